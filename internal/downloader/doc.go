// Package downloader fetches item images and stores them one at a time.
//
// Each download is checked with image.DecodeConfig before it reaches the
// disk, which both rejects HTML error pages served with a 200 status and
// yields the pixel size the workbook uses for row height and column width.
package downloader
