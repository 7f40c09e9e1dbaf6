package services

import (
	"strings"

	"property-scraper/config"
	"property-scraper/models"
	"property-scraper/normalize"
	"property-scraper/utils"
)

// Cleaner turns the raw fragments of every site into canonical Listings.
type Cleaner struct {
	logger *utils.Logger
	sites  map[string]config.SiteOptions
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithSiteOptions tunes the classifiers used for listings from site.
func WithSiteOptions(site string, opts config.SiteOptions) CleanerOption {
	return func(c *Cleaner) {
		c.sites[site] = opts
	}
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger, opts ...CleanerOption) *Cleaner {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	c := &Cleaner{logger: logger, sites: make(map[string]config.SiteOptions)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean processes raw listings and returns cleaned records in input order.
// Sold listings and listings without a URL are dropped; a listing whose key
// was already emitted is suppressed, never merged.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := utils.NewKeySet()
	result := make([]*models.Listing, 0, len(raw))
	var noKey, sold, dups int

	for _, r := range raw {
		if r == nil {
			continue
		}
		key := r.Key()
		if key == "" {
			noKey++
			c.logger.Warn("[cleaner] Dropping %s listing without a URL: %q", r.Site, r.DisplayAddress)
			continue
		}

		listing := c.assemble(r)
		if listing.SaleType == normalize.Sold {
			sold++
			c.logger.Debug("[cleaner] Sold listing dropped: %s", key)
			continue
		}

		if !seen.Claim(key) {
			dups++
			c.logger.Debug("[cleaner] Duplicate listing skipped: %s", key)
			continue
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (no url %d, sold %d, duplicate %d)",
		len(raw), len(result), noKey, sold, dups)
	return result
}

// assemble maps one raw listing onto the canonical record.
func (c *Cleaner) assemble(r *models.RawListing) *models.Listing {
	opts := c.sites[r.Site]

	var saleOpts []normalize.SaleTypeOption
	if opts.PreferLet {
		saleOpts = append(saleOpts, normalize.PreferLet())
	}
	var tenureOpts []normalize.TenureOption
	if opts.BroadLease {
		tenureOpts = append(tenureOpts, normalize.BroadLease())
	}

	description := normalize.Clean(r.Description)
	saleType := normalize.ClassifySaleType(r.SaleTypeText, saleOpts...)

	tenure := normalize.ClassifyTenure(r.TenureText, tenureOpts...)
	if tenure == normalize.TenureUnknown {
		tenure = normalize.ClassifyTenure(description, tenureOpts...)
	}

	sizeFt, sizeAc := normalize.ExtractSize(r.SizeText)
	if !sizeFt.Valid && !sizeAc.Valid {
		sizeFt, sizeAc = normalize.ExtractSize(description)
	}

	address := normalize.Clean(r.DisplayAddress)
	postcode := normalize.ExtractPostcode(r.PostcodeText)
	if postcode == "" {
		postcode = normalize.ExtractPostcode(address)
	}

	return &models.Listing{
		Site:                r.Site,
		ListingURL:          strings.TrimSpace(r.ListingURL),
		BrochureURLs:        r.BrochureURLs,
		PropertyImages:      r.PropertyImages,
		DisplayAddress:      address,
		Price:               normalize.ExtractPrice(r.PriceText, saleType),
		SizeFt:              sizeFt,
		SizeAc:              sizeAc,
		PostalCode:          postcode,
		Tenure:              tenure,
		SaleType:            saleType,
		DetailedDescription: description,
		PropertySubType:     normalize.Clean(r.PropertySubType),
		Agent:               primaryAgent(r.Agents),
		ScrapedAt:           r.ScrapedAt,
	}
}

// primaryAgent returns the first agent contact in source order.
func primaryAgent(agents []models.RawAgent) models.Agent {
	if len(agents) == 0 {
		return models.Agent{}
	}
	a := agents[0]
	return models.Agent{
		CompanyName: normalize.Clean(a.CompanyName),
		Name:        normalize.Clean(a.Name),
		Email:       normalize.Clean(a.Email),
		Phone:       normalize.Clean(a.Phone),
		Street:      normalize.Clean(a.Street),
		City:        normalize.Clean(a.City),
		Postcode:    normalize.ExtractPostcode(a.Postcode),
	}
}
