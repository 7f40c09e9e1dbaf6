package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"property-scraper/config"
	"property-scraper/models"
	"property-scraper/scraper"
	"property-scraper/services"
	"property-scraper/storage"
	"property-scraper/utils"
)

type runOptions struct {
	sitesFile string
	only      []string
	csvPath   string
	noDB      bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the registered sites and write cleaned listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if !cmd.Flags().Changed("sites") {
				opts.sitesFile = cfg.Run.SitesFile
			}
			if !cmd.Flags().Changed("csv") {
				opts.csvPath = cfg.Run.CSVOutputPath
			}

			logger := utils.NewLogger(cfg.Run.LogLevel)
			defer logger.Sync()
			if !cfg.DotEnvLoaded {
				logger.Debug("No .env file found, using the process environment")
			}

			if err := runScrape(cmd.Context(), cfg, opts, logger, cmd.OutOrStdout()); err != nil {
				logger.Error("Run failed: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.sitesFile, "sites", "", "site registry file (default $SITES_FILE or ./sites.yaml)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "comma-separated site names to scrape")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV output path (default $CSV_OUTPUT_PATH); empty disables CSV")
	cmd.Flags().BoolVar(&opts.noDB, "no-db", false, "skip PostgreSQL even when POSTGRES_ENABLED is set")
	return cmd
}

func runScrape(ctx context.Context, cfg *config.Config, opts runOptions, logger *utils.Logger, out io.Writer) error {
	logger.Info("=== Property scraper starting ===")
	logger.Info("Config: sites file %s | concurrency: %d | retries: %d | timeout: %v",
		opts.sitesFile, cfg.Run.MaxConcurrency, cfg.Fetch.MaxRetries, cfg.Fetch.Timeout)

	registry, err := config.LoadSites(opts.sitesFile)
	if err != nil {
		return err
	}
	selected, err := selectSites(registry, opts.only)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return errors.New("no enabled sites to scrape")
	}

	sinks, err := openSinks(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("Closing sink: %v", err)
			}
		}
	}()

	static := scraper.NewCollyFetcher(cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
	var browser *scraper.BrowserFetcher
	retry := &utils.RetryConfig{MaxAttempts: cfg.Fetch.MaxRetries, BaseDelay: cfg.Fetch.RetryDelay, Logger: logger}

	sites := make([]scraper.Site, 0, len(selected))
	cleanerOpts := make([]services.CleanerOption, 0, len(selected))
	for _, sc := range selected {
		var fetcher scraper.Fetcher = static
		if sc.Fetcher == config.FetcherBrowser {
			if browser == nil {
				browser = scraper.NewBrowserFetcher(cfg.Fetch.ChromeBin, cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
				defer browser.Close()
			}
			fetcher = browser
		}
		site, err := scraper.New(sc, fetcher, retry, logger)
		if err != nil {
			return err
		}
		sites = append(sites, site)
		cleanerOpts = append(cleanerOpts, services.WithSiteOptions(sc.Name, sc.Options))
	}

	raw := scrapeAll(ctx, sites, cfg.Run.MaxConcurrency, logger)
	if len(raw) == 0 {
		return errors.New("no listings were scraped")
	}
	logger.Info("Scraped %d raw listings from %d site(s)", len(raw), len(sites))

	cleaned := services.NewCleaner(logger, cleanerOpts...).Clean(raw)
	if len(cleaned) == 0 {
		return errors.New("all listings were dropped during cleaning")
	}

	for _, s := range sinks {
		if err := s.Write(cleaned); err != nil {
			logger.Error("Sink write failed: %v", err)
		}
	}

	insights := services.NewInsightService(logger)
	insights.Print(out, insights.Generate(cleaned))

	logger.Info("Done. %d listings written to %d sink(s)", len(cleaned), len(sinks))
	return nil
}

// selectSites drops disabled sites and, when only is non-empty, keeps the
// named ones. Naming an unknown site is an error.
func selectSites(registry []config.SiteConfig, only []string) ([]config.SiteConfig, error) {
	want := make(map[string]bool, len(only))
	for _, name := range only {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}

	var out []config.SiteConfig
	for _, sc := range registry {
		if len(want) > 0 {
			if !want[sc.Name] {
				continue
			}
			delete(want, sc.Name)
		} else if sc.Disabled {
			continue
		}
		out = append(out, sc)
	}

	if len(want) > 0 {
		var unknown []string
		for name := range want {
			unknown = append(unknown, name)
		}
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown site(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

func openSinks(cfg *config.Config, opts runOptions, logger *utils.Logger) ([]storage.ListingWriter, error) {
	var sinks []storage.ListingWriter
	if opts.csvPath != "" {
		w, err := storage.NewCSVWriter(opts.csvPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Writing CSV to %s", opts.csvPath)
		sinks = append(sinks, w)
	}

	if cfg.Postgres.Enabled && !opts.noDB {
		pg, err := storage.NewPostgresWriter(cfg.Postgres.DSN())
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, err
		}
		logger.Info("Writing listings to PostgreSQL (table: listings)")
		sinks = append(sinks, pg)
	}
	return sinks, nil
}

// scrapeAll runs the sites on a bounded pool and returns their listings in
// site order. A failing site is logged and contributes nothing.
func scrapeAll(ctx context.Context, sites []scraper.Site, maxConcurrency int, logger *utils.Logger) []*models.RawListing {
	results := make([][]*models.RawListing, len(sites))
	pool := utils.NewWorkerPool(ctx, maxConcurrency)

	for i, site := range sites {
		started := pool.Go(func(ctx context.Context) {
			listings, err := site.Scrape(ctx)
			if err != nil {
				logger.Error("[%s] Scrape failed: %v", site.Name(), err)
				return
			}
			results[i] = listings
		})
		if !started {
			logger.Warn("Run cancelled, %d site(s) not started", len(sites)-i)
			break
		}
	}
	pool.Wait()

	var all []*models.RawListing
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}
