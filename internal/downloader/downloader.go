package downloader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	// Formats the catalog serves; registered for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/models"
)

// ImageSource fetches image bytes
type ImageSource interface {
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// ImageStore persists images under the output directory
type ImageStore interface {
	Exists(relPath string) bool
	Save(r io.Reader, relPath string) (int64, error)
	AbsPath(relPath string) string
}

// Result represents the outcome of one image download
type Result struct {
	Image    models.ImageFile
	Skipped  bool
	Duration time.Duration
}

// Downloader fetches item images one at a time
type Downloader struct {
	source       ImageSource
	store        ImageStore
	skipExisting bool
	logger       logger.Logger
}

// New creates a downloader. With skipExisting set, an image already present
// at its path is reused instead of fetched again.
func New(source ImageSource, store ImageStore, skipExisting bool, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		source:       source,
		store:        store,
		skipExisting: skipExisting,
		logger:       log,
	}
}

// Fetch downloads imageURL to relPath and returns the stored file. Bytes that
// do not decode as an image are rejected before anything is written.
func (d *Downloader) Fetch(ctx context.Context, imageURL, relPath string) (Result, error) {
	start := time.Now()
	result := Result{}

	if d.skipExisting && d.store.Exists(relPath) {
		img, err := d.describeExisting(relPath)
		if err == nil {
			d.logger.DebugWithFields("Image already downloaded", map[string]interface{}{
				"path": relPath,
			})
			result.Image = img
			result.Skipped = true
			result.Duration = time.Since(start)
			return result, nil
		}
		d.logger.WarnWithFields("Existing image unreadable, downloading again", map[string]interface{}{
			"path":  relPath,
			"error": err.Error(),
		})
	}

	data, err := d.source.DownloadImage(ctx, imageURL)
	if err != nil {
		return result, fmt.Errorf("download failed: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return result, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "response is not a supported image",
			URL:     imageURL,
			Err:     err,
		}
	}

	size, err := d.store.Save(bytes.NewReader(data), relPath)
	if err != nil {
		return result, fmt.Errorf("save failed: %w", err)
	}

	result.Image = models.ImageFile{
		Path:    d.store.AbsPath(relPath),
		RelPath: relPath,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Size:    size,
	}
	result.Duration = time.Since(start)

	d.logger.DebugWithFields("Image saved", map[string]interface{}{
		"path":     relPath,
		"format":   format,
		"size":     size,
		"width":    cfg.Width,
		"height":   cfg.Height,
		"duration": result.Duration,
	})

	return result, nil
}

func (d *Downloader) describeExisting(relPath string) (models.ImageFile, error) {
	path := d.store.AbsPath(relPath)
	f, err := os.Open(path)
	if err != nil {
		return models.ImageFile{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.ImageFile{}, err
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return models.ImageFile{}, err
	}

	return models.ImageFile{
		Path:    path,
		RelPath: relPath,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Size:    info.Size(),
	}, nil
}
