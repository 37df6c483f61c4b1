package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"tuniscraper/pkg/config"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/scraper"
	"tuniscraper/pkg/ui"
)

func runScrape(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configFile, opts.flagOverrides(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = ui.IsTerminal(f)
	}
	showProgress := interactive && !opts.quiet && !opts.verbose
	if showProgress || opts.quiet {
		cfg.Logging.Quiet = true
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("tuniscraper starting")

	scraperOpts := []scraper.Option{scraper.WithLogger(log)}
	var display *ui.ProgressDisplay
	if showProgress {
		ui.PrintBanner(out)
		ui.PrintInfo(out, "Catalog", cfg.CatalogURL())
		ui.PrintInfo(out, "Output", cfg.WorkbookPath())
		display = ui.NewProgressDisplay(out)
		scraperOpts = append(scraperOpts, scraper.WithProgress(display))
	}

	s, err := scraper.New(cfg, scraperOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := s.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Scrape stopped")
		return err
	}

	if display != nil {
		display.Complete()
	}
	log.InfoWithFields("Scrape finished", map[string]interface{}{
		"rows":     summary.ItemsWritten,
		"skipped":  summary.ItemsFailed,
		"duration": summary.Duration,
	})
	return nil
}
