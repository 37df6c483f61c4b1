// Package scraper drives a catalog run.
//
// The Scraper fetches the category index, asks the resume controller which
// categories are already complete, and walks the rest in navigation order:
//
//	category listing -> item links -> item page -> image -> workbook row
//
// A model page lists its variants in the same grid as the listings. Each
// variant becomes its own row with the listing thumbnail as image, a
// "Brand + Model" cell taken from the page breadcrumb and an image named
// <brand>-<model>-<variant>. Variant pages themselves are not fetched.
//
// Everything happens on one goroutine. A failed item is logged and skipped;
// a category whose listing cannot be fetched or parsed is logged and skipped;
// only an unreachable or unreadable category index aborts the run. The
// workbook is saved after each category that produced rows, so stopping the
// process loses at most the category in progress, which the next run redoes
// from its first item.
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := s.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary.ItemsWritten, "rows written")
package scraper
