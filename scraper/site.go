package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"property-scraper/config"
	"property-scraper/models"
	"property-scraper/utils"
)

// Site scrapes one agency and returns its listings as raw text fragments.
type Site interface {
	Name() string
	Scrape(ctx context.Context) ([]*models.RawListing, error)
}

// Scraper is a registry-driven Site. It fetches each start URL, picks the
// listing cards out of the page and, when configured, enriches every listing
// from its detail page.
type Scraper struct {
	cfg     config.SiteConfig
	fetcher Fetcher
	retry   *utils.RetryConfig
	logger  *utils.Logger
	seen    *utils.KeySet
	parse   parseFunc
	now     func() time.Time
}

// New builds the Site described by cfg. The fetcher must match cfg.Fetcher;
// the caller owns it.
func New(cfg config.SiteConfig, fetcher Fetcher, retry *utils.RetryConfig, logger *utils.Logger) (*Scraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scraper %s: nil fetcher", cfg.Name)
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}

	var parse parseFunc
	switch {
	case cfg.Kind == config.KindJSON:
		parse = parseJSON
	case cfg.SelectorType == config.SelectorXPath:
		parse = parseXPath
	case cfg.Kind == config.KindHTML:
		parse = parseCSS
	default:
		return nil, fmt.Errorf("scraper %s: unsupported kind %q", cfg.Name, cfg.Kind)
	}

	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		retry:   retry,
		logger:  logger.Named(cfg.Name),
		seen:    utils.NewKeySet(),
		parse:   parse,
		now:     time.Now,
	}, nil
}

func (s *Scraper) Name() string {
	return s.cfg.Name
}

// Scrape visits every start URL in order. A start page that cannot be
// fetched or parsed is logged and skipped; Scrape only fails when none of
// them could be read.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	s.logger.Info("Starting scrape of %d start page(s)", len(s.cfg.StartURLs))

	var (
		listings []*models.RawListing
		errs     []error
	)
	for _, pageURL := range s.cfg.StartURLs {
		if err := ctx.Err(); err != nil {
			return listings, err
		}

		page, err := s.scrapePage(ctx, pageURL)
		if err != nil {
			s.logger.Error("Start page %s failed: %v", pageURL, err)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("%s yielded %d listing(s)", pageURL, len(page))
		listings = append(listings, page...)
	}

	if len(errs) == len(s.cfg.StartURLs) && len(errs) > 0 {
		return nil, fmt.Errorf("scraper %s: no start page could be read: %w", s.cfg.Name, errors.Join(errs...))
	}

	if s.cfg.Detail != nil {
		s.enrich(ctx, listings)
	}

	s.logger.Info("Scrape complete, %d raw listing(s)", len(listings))
	return listings, nil
}

func (s *Scraper) scrapePage(ctx context.Context, pageURL string) ([]*models.RawListing, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}

	root, err := s.load(ctx, pageURL, s.cfg.WaitFor)
	if err != nil {
		return nil, err
	}

	cards := root.records(s.cfg.Listing)
	if len(cards) == 0 {
		s.logger.Warn("No listing cards matched %q on %s", s.cfg.Listing, pageURL)
	}

	scrapedAt := s.now().UTC()
	out := make([]*models.RawListing, 0, len(cards))
	for i, card := range cards {
		raw := extractListing(card, s.cfg.Fields, s.cfg.Agent, base)
		raw.Site = s.cfg.Name
		raw.ScrapedAt = scrapedAt

		key := raw.Key()
		if key == "" {
			s.logger.Debug("Card %d on %s has no listing or brochure URL, skipped", i+1, pageURL)
			continue
		}
		if !s.seen.Claim(key) {
			s.logger.Debug("Duplicate listing %s skipped", key)
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// enrich fills empty fields of each listing from its detail page. A detail
// page that fails only costs that listing its enrichment.
func (s *Scraper) enrich(ctx context.Context, listings []*models.RawListing) {
	detail := s.cfg.Detail
	for _, raw := range listings {
		if ctx.Err() != nil {
			return
		}
		if raw.ListingURL == "" {
			continue
		}
		base, err := url.Parse(raw.ListingURL)
		if err != nil {
			s.logger.Warn("Bad detail url %q: %v", raw.ListingURL, err)
			continue
		}

		root, err := s.load(ctx, raw.ListingURL, detail.WaitFor)
		if err != nil {
			s.logger.Warn("Detail page %s skipped: %v", raw.ListingURL, err)
			continue
		}
		mergeListing(raw, extractListing(root, detail.Fields, detail.Agent, base))
	}
}

func (s *Scraper) load(ctx context.Context, pageURL, waitFor string) (record, error) {
	var body []byte
	op := fmt.Sprintf("fetch %s %s", s.cfg.Name, pageURL)
	err := s.retry.Do(ctx, op, func(ctx context.Context) error {
		b, err := s.fetcher.Fetch(ctx, pageURL, waitFor)
		var fe *FetchError
		if errors.As(err, &fe) && !fe.Temporary() {
			return utils.Permanent(err)
		}
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, &FetchError{URL: pageURL, Err: errors.New("empty body")}
	}
	return s.parse(body)
}
