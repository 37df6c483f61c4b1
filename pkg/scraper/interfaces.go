package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher defines the HTTP operations the driver needs
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Progress receives per-row events for display. A category starts with one
// expected row per listing item; AddItems reports the extra rows of items
// that list variants.
type Progress interface {
	StartCategory(category string, items int)
	AddItems(n int)
	CompleteItem(item string, size int64)
	FailItem(item string, err error)
	CompleteCategory(category string, written int)
}

type nopProgress struct{}

func (nopProgress) StartCategory(string, int)    {}
func (nopProgress) AddItems(int)                 {}
func (nopProgress) CompleteItem(string, int64)   {}
func (nopProgress) FailItem(string, error)       {}
func (nopProgress) CompleteCategory(string, int) {}
