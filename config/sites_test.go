package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSites = `
sites:
  - name: northgate-commercial
    start_urls: ["https://northgate.example/properties"]
    listing: ".property-card"
    fields:
      listing_url: "a.card-link@href"
      price: ".price"
    options:
      prefer_let: true
  - name: pennine-feed
    kind: json
    start_urls: ["https://pennine.example/api/listings"]
    listing: "results"
    fields:
      listing_url: "url"
`

func TestParseSitesAppliesDefaults(t *testing.T) {
	sites, err := ParseSites([]byte(validSites))
	require.NoError(t, err)
	require.Len(t, sites, 2)

	html := sites[0]
	assert.Equal(t, KindHTML, html.Kind)
	assert.Equal(t, FetcherStatic, html.Fetcher)
	assert.Equal(t, SelectorCSS, html.SelectorType)
	assert.True(t, html.Options.PreferLet)
	assert.Nil(t, html.Detail)

	feed := sites[1]
	assert.Equal(t, KindJSON, feed.Kind)
	assert.Equal(t, "", feed.SelectorType)
}

func TestParseSitesReportsAllErrors(t *testing.T) {
	_, err := ParseSites([]byte(`
sites:
  - name: broken
    kind: rss
    fetcher: carrier-pigeon
  - name: dup
    start_urls: ["https://a.example"]
    listing: ".card"
    fields: {listing_url: "a@href"}
  - name: dup
    start_urls: ["https://b.example"]
    listing: ".card"
    fields: {listing_url: "a@href"}
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown kind "rss"`)
	assert.Contains(t, msg, `unknown fetcher "carrier-pigeon"`)
	assert.Contains(t, msg, "start_url is required")
	assert.Contains(t, msg, `site "dup": duplicate name`)
}

func TestValidateJSONBrowserRejected(t *testing.T) {
	s := SiteConfig{
		Name:      "feed",
		Kind:      KindJSON,
		Fetcher:   FetcherBrowser,
		StartURLs: []string{"https://feed.example"},
		Listing:   "items",
		Fields:    FieldSelectors{ListingURL: "url"},
	}
	assert.ErrorContains(t, s.Validate(), "static fetcher")
}

func TestValidateDetailNeedsListingURL(t *testing.T) {
	s := SiteConfig{
		Name:         "brochures-only",
		Kind:         KindHTML,
		Fetcher:      FetcherStatic,
		SelectorType: SelectorCSS,
		StartURLs:    []string{"https://agency.example"},
		Listing:      ".card",
		Fields:       FieldSelectors{BrochureURL: "a.pdf@href"},
		Detail:       &DetailConfig{},
	}
	assert.ErrorContains(t, s.Validate(), "detail pages need a listing_url")
}

func TestValidateRejectsBadStartURL(t *testing.T) {
	s := SiteConfig{
		Name:         "typo",
		Kind:         KindHTML,
		Fetcher:      FetcherStatic,
		SelectorType: SelectorXPath,
		StartURLs:    []string{"https://ok.example/list", "ftp://files.example/list"},
		Listing:      "//li",
		Fields:       FieldSelectors{ListingURL: ".//a@href"},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `start_urls[1] "ftp://files.example/list" is not an http(s) URL`)
	assert.NotContains(t, err.Error(), "start_urls[0]")
}

func TestValidateUnknownSelectorType(t *testing.T) {
	s := SiteConfig{
		Name:         "css-ish",
		Kind:         KindHTML,
		Fetcher:      FetcherStatic,
		SelectorType: "jquery",
		StartURLs:    []string{"https://agency.example"},
		Listing:      ".card",
		Fields:       FieldSelectors{ListingURL: "a@href"},
	}
	assert.ErrorContains(t, s.Validate(), `unknown selector_type "jquery"`)
}

func TestParseSitesBadYAML(t *testing.T) {
	_, err := ParseSites([]byte("sites: [this is: not valid"))
	assert.ErrorContains(t, err, "config: parse sites")
}

func TestLoadSitesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSites), 0o644))

	sites, err := LoadSites(path)
	require.NoError(t, err)
	assert.Len(t, sites, 2)

	_, err = LoadSites(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: read sites")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "7")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("FETCH_TIMEOUT_SEC", "not-a-number")
	t.Setenv("POSTGRES_DB", "agency")

	t.Setenv("RETRY_BASE_DELAY_MS", "-5")

	cfg := Load()
	assert.Equal(t, 7, cfg.Run.MaxConcurrency)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Fetch.RetryDelay)
	assert.Contains(t, cfg.Postgres.DSN(), "/agency?sslmode=disable")
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	p := PostgresConfig{User: "scraper", Password: "p@ss:w/rd", Host: "db", Port: "5433", DB: "listings_db", SSLMode: "require"}
	assert.Equal(t, "postgres://scraper:p%40ss%3Aw%2Frd@db:5433/listings_db?sslmode=require", p.DSN())
}
