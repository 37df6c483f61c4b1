package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tuniscraper/internal/downloader"
	"tuniscraper/pkg/config"
	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/extractor"
	"tuniscraper/pkg/fetcher"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/models"
	"tuniscraper/pkg/resume"
	"tuniscraper/pkg/storage"
	"tuniscraper/pkg/workbook"
)

// Summary describes what a run did
type Summary struct {
	Categories        int
	CategoriesDone    int
	CategoriesSkipped int
	CategoriesFailed  int
	ItemsWritten      int
	ItemsFailed       int
	ImagesReused      int
	BytesDownloaded   int64
	Duration          time.Duration
}

// Scraper walks the catalog: categories, then items, then one row per item
type Scraper struct {
	config     *config.Config
	fetcher    PageFetcher
	extractor  *extractor.Extractor
	store      *storage.Manager
	downloader *downloader.Downloader
	progress   Progress
	logger     logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithProgress sets the progress receiver
func WithProgress(p Progress) Option {
	return func(s *Scraper) { s.progress = p }
}

// WithFetcher replaces the HTTP client
func WithFetcher(f PageFetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

// New creates a new Scraper instance
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config:    cfg,
		extractor: extractor.New(cfg.Site.Selectors),
		progress:  nopProgress{},
		logger:    logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = fetcher.NewClient(cfg.Fetcher, s.logger)
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	s.store = store
	s.downloader = downloader.New(s.fetcher, store, cfg.Output.SkipExistingImages, s.logger)

	return s, nil
}

// Run scrapes every category that is not complete yet. Failing to read the
// category index is fatal; failures of single categories or items are logged
// and skipped. The workbook is saved after each category.
func (s *Scraper) Run(ctx context.Context) (summary Summary, err error) {
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	indexURL := s.config.CatalogURL()
	s.logger.InfoWithFields("Scraping process initialization", map[string]interface{}{
		"catalog": indexURL,
		"output":  s.store.GetOutputDir(),
	})

	doc, err := s.fetcher.Document(ctx, indexURL)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch category index: %w", err)
	}
	categories, err := s.extractor.Categories(doc, indexURL)
	if err != nil {
		return summary, fmt.Errorf("failed to read category index: %w", err)
	}
	summary.Categories = len(categories)

	names := make([]string, len(categories))
	for i, category := range categories {
		names[i] = category.Name
	}
	s.store.AssignFolders(names)

	wb, err := workbook.Open(s.config.WorkbookPath(), workbook.Options{
		EmbedImages:    s.config.Output.EmbedImages,
		ImageMaxHeight: s.config.Output.ImageMaxHeight,
		Logger:         s.logger,
	})
	if err != nil {
		return summary, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	plan := resume.NewController(s.store, wb, s.logger).Plan(categories)
	for _, decision := range plan {
		if decision.State == resume.Done {
			summary.CategoriesSkipped++
			s.logger.DebugWithFields("Skipping completed category", map[string]interface{}{
				"category": decision.Category.Name,
				"rows":     wb.CategoryRows(decision.Category.Name),
			})
		}
	}

	processed := 0
	for _, category := range resume.Pending(plan) {
		if limit := s.config.Scrape.MaxCategories; limit > 0 && processed >= limit {
			s.logger.InfoWithFields("Category limit reached", map[string]interface{}{
				"max_categories": limit,
			})
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		processed++

		written, err := s.scrapeCategory(ctx, wb, category, &summary)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.WarnWithFields("Interrupted, rows of this category are not saved", map[string]interface{}{
					"category": category.Name,
				})
				return summary, ctx.Err()
			}
			summary.CategoriesFailed++
			s.logger.WithError(err).WithField("category", category.Name).Error("Category skipped")
			continue
		}

		if written == 0 {
			summary.CategoriesFailed++
			s.logger.WarnWithFields("Category produced no rows", map[string]interface{}{
				"category": category.Name,
			})
			continue
		}

		if err := wb.Save(); err != nil {
			return summary, fmt.Errorf("failed to save workbook after %s: %w", category.Name, err)
		}
		summary.CategoriesDone++
		s.logger.InfoWithFields("Category complete", map[string]interface{}{
			"category":   category.Name,
			"rows":       written,
			"total_rows": wb.Len(),
			"workbook":   wb.Path(),
		})
	}

	s.logger.InfoWithFields("Scraping process complete", map[string]interface{}{
		"categories_done":    summary.CategoriesDone,
		"categories_skipped": summary.CategoriesSkipped,
		"categories_failed":  summary.CategoriesFailed,
		"items_written":      summary.ItemsWritten,
		"items_failed":       summary.ItemsFailed,
	})
	return summary, nil
}

// entry is one workbook row to write: a plain item, or one variant listed on
// a model page
type entry struct {
	name       string
	url        string
	imageURL   string
	fileName   string
	attributes []models.Attribute
}

// scrapeCategory appends one row per item, or per variant for items whose
// page lists variants, and returns how many rows were written. Item failures
// are counted, not returned.
func (s *Scraper) scrapeCategory(ctx context.Context, wb *workbook.Workbook, category models.Category, summary *Summary) (int, error) {
	log := s.logger.WithField("category", category.Name)
	log.InfoWithFields("Beginning category", map[string]interface{}{"url": category.URL})

	doc, err := s.fetcher.Document(ctx, category.URL)
	if err != nil {
		return 0, err
	}
	items, err := s.extractor.Items(doc, category.URL, category.Name)
	if err != nil {
		return 0, err
	}

	log.InfoWithFields("Items found", map[string]interface{}{"count": len(items)})
	s.progress.StartCategory(category.Name, len(items))

	written := 0
	used := make(map[string]bool)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		entries, err := s.itemEntries(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			logger.LogItem(s.logger, category.Name, itemLabel(item), err)
			summary.ItemsFailed++
			s.progress.FailItem(itemLabel(item), err)
			logger.LogCategoryProgress(s.logger, category.Name, i+1, len(items))
			continue
		}
		if len(entries) > 1 {
			s.progress.AddItems(len(entries) - 1)
		}

		for _, e := range entries {
			row, reused, err := s.writeEntry(ctx, wb, category.Name, e, used)
			if err != nil && ctx.Err() != nil {
				return written, ctx.Err()
			}
			logger.LogItem(s.logger, category.Name, e.name, err)
			if err != nil {
				summary.ItemsFailed++
				s.progress.FailItem(e.name, err)
				continue
			}

			written++
			summary.ItemsWritten++
			if reused {
				summary.ImagesReused++
			} else {
				summary.BytesDownloaded += row.Image.Size
			}
			s.progress.CompleteItem(row.ItemName, row.Image.Size)
		}
		logger.LogCategoryProgress(s.logger, category.Name, i+1, len(items))
	}

	s.progress.CompleteCategory(category.Name, written)
	return written, nil
}

// itemEntries fetches the item page and returns the rows it yields. A model
// page yields one row per variant, named brand-model-variant after its
// breadcrumb; any other page yields a single row for the item.
func (s *Scraper) itemEntries(ctx context.Context, item models.Item) ([]entry, error) {
	doc, err := s.fetcher.Document(ctx, item.URL)
	if err != nil {
		return nil, err
	}
	detail, err := s.extractor.Detail(doc, item.URL)
	if err != nil {
		return nil, err
	}

	name := item.Name
	if name == "" {
		name = detail.Title
	}

	if len(detail.Variants) > 0 {
		brand := detail.Parent
		if brand == "" {
			brand = item.Category
		}
		model := detail.Current
		if model == "" {
			model = name
		}

		entries := make([]entry, 0, len(detail.Variants))
		for _, v := range detail.Variants {
			variant := v.Name
			if variant == "" {
				variant = v.URL
			}
			attributes := []models.Attribute{{Name: "Brand + Model", Value: brand + " " + model}}
			entries = append(entries, entry{
				name:       variant,
				url:        v.URL,
				imageURL:   v.ThumbnailURL,
				fileName:   brand + "-" + model + "-" + variant,
				attributes: append(attributes, detail.Attributes...),
			})
		}
		return entries, nil
	}

	imageURL := detail.ImageURL
	if imageURL == "" {
		imageURL = item.ThumbnailURL
	}

	var attributes []models.Attribute
	if detail.Title != "" && detail.Title != name {
		attributes = append(attributes, models.Attribute{Name: "Title", Value: detail.Title})
	}
	attributes = append(attributes, detail.Attributes...)

	return []entry{{
		name:       name,
		url:        item.URL,
		imageURL:   imageURL,
		fileName:   name,
		attributes: attributes,
	}}, nil
}

// writeEntry downloads the entry's image and appends its row. It returns
// whether an image already on disk was reused.
func (s *Scraper) writeEntry(ctx context.Context, wb *workbook.Workbook, category string, e entry, used map[string]bool) (models.OutputRow, bool, error) {
	if e.imageURL == "" {
		return models.OutputRow{}, false, errs.Parse(e.url, "item has no image")
	}

	relPath := uniquePath(s.store.ImagePath(category, e.fileName, e.imageURL), used)
	result, err := s.downloader.Fetch(ctx, e.imageURL, relPath)
	if err != nil {
		return models.OutputRow{}, false, err
	}
	used[relPath] = true

	row := models.OutputRow{
		Category:   category,
		ItemName:   e.name,
		ItemURL:    e.url,
		Attributes: e.attributes,
		Image:      result.Image,
	}
	if err := wb.Append(row); err != nil {
		return models.OutputRow{}, false, errs.FileIO(wb.Path(), err)
	}
	return row, result.Skipped, nil
}
// uniquePath numbers the file name when two items of a category share a name
func uniquePath(relPath string, used map[string]bool) string {
	if !used[relPath] {
		return relPath
	}
	ext := filepath.Ext(relPath)
	base := strings.TrimSuffix(relPath, ext)
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n) + ext
		if !used[candidate] {
			return candidate
		}
	}
}

func itemLabel(item models.Item) string {
	if item.Name != "" {
		return item.Name
	}
	return item.URL
}
