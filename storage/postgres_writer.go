package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"property-scraper/models"
	"property-scraper/normalize"
)

// insertColumns lists the columns Write fills, in argument order.
var insertColumns = []string{
	"site", "listing_key", "listing_url", "brochure_urls", "property_images",
	"display_address", "price", "size_ft", "size_ac", "postal_code", "tenure",
	"sale_type", "detailed_description", "property_sub_type",
	"agent_company_name", "agent_name", "agent_email", "agent_phone",
	"agent_street", "agent_city", "agent_postcode", "scraped_at",
}

const insertBatchSize = 50

// PostgresWriter persists cleaned listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, creates the listings
// table when missing, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id                   BIGSERIAL PRIMARY KEY,
			site                 TEXT             NOT NULL DEFAULT '',
			listing_key          TEXT             UNIQUE NOT NULL,
			listing_url          TEXT             NOT NULL DEFAULT '',
			brochure_urls        TEXT[]           NOT NULL DEFAULT '{}',
			property_images      TEXT[]           NOT NULL DEFAULT '{}',
			display_address      TEXT             NOT NULL DEFAULT '',
			price                BIGINT,
			size_ft              DOUBLE PRECISION,
			size_ac              DOUBLE PRECISION,
			postal_code          TEXT             NOT NULL DEFAULT '',
			tenure               TEXT             NOT NULL DEFAULT '',
			sale_type            TEXT             NOT NULL DEFAULT '',
			detailed_description TEXT             NOT NULL DEFAULT '',
			property_sub_type    TEXT             NOT NULL DEFAULT '',
			agent_company_name   TEXT             NOT NULL DEFAULT '',
			agent_name           TEXT             NOT NULL DEFAULT '',
			agent_email          TEXT             NOT NULL DEFAULT '',
			agent_phone          TEXT             NOT NULL DEFAULT '',
			agent_street         TEXT             NOT NULL DEFAULT '',
			agent_city           TEXT             NOT NULL DEFAULT '',
			agent_postcode       TEXT             NOT NULL DEFAULT '',
			scraped_at           TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			created_at           TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_site        ON listings(site);
		CREATE INDEX IF NOT EXISTS idx_listings_price       ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_postal_code ON listings(postal_code);
		CREATE INDEX IF NOT EXISTS idx_listings_sale_type   ON listings(sale_type);
	`)
	return err
}

// Write batch-inserts the listings. Listings whose key is already stored are
// left untouched.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	for i := 0; i < len(listings); i += insertBatchSize {
		end := min(i+insertBatchSize, len(listings))
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	args := make([]any, 0, len(batch)*len(insertColumns))
	for _, l := range batch {
		args = append(args, listingArgs(l)...)
	}
	_, err := pw.db.Exec(insertQuery(len(batch)), args...)
	return err
}

// insertQuery builds a multi-row INSERT for n listings.
func insertQuery(n int) string {
	cols := len(insertColumns)
	rows := make([]string, 0, n)
	for r := 0; r < n; r++ {
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", r*cols+c+1)
		}
		rows = append(rows, "("+strings.Join(ph, ",")+")")
	}
	return fmt.Sprintf(
		"INSERT INTO listings (%s) VALUES %s ON CONFLICT (listing_key) DO NOTHING",
		strings.Join(insertColumns, ", "), strings.Join(rows, ","),
	)
}

// listingArgs returns the insert arguments for l in insertColumns order.
// Absent numbers become NULL.
func listingArgs(l *models.Listing) []any {
	scraped := l.ScrapedAt
	if scraped.IsZero() {
		scraped = time.Now()
	}
	return []any{
		l.Site,
		listingKey(l),
		l.ListingURL,
		pq.Array(orEmpty(l.BrochureURLs)),
		pq.Array(orEmpty(l.PropertyImages)),
		l.DisplayAddress,
		l.Price,
		l.SizeFt,
		l.SizeAc,
		l.PostalCode,
		string(l.Tenure),
		string(l.SaleType),
		l.DetailedDescription,
		l.PropertySubType,
		l.Agent.CompanyName,
		l.Agent.Name,
		l.Agent.Email,
		l.Agent.Phone,
		l.Agent.Street,
		l.Agent.City,
		l.Agent.Postcode,
		scraped.UTC(),
	}
}

func listingKey(l *models.Listing) string {
	if l.ListingURL != "" {
		return l.ListingURL
	}
	if len(l.BrochureURLs) > 0 {
		return l.BrochureURLs[0]
	}
	return ""
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT id, site, listing_url, brochure_urls, property_images, display_address,
		       price, size_ft, size_ac, postal_code, tenure, sale_type,
		       detailed_description, property_sub_type,
		       agent_company_name, agent_name, agent_email, agent_phone,
		       agent_street, agent_city, agent_postcode, scraped_at
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var tenure, saleType string
		if err := rows.Scan(
			&l.ID, &l.Site, &l.ListingURL, pq.Array(&l.BrochureURLs), pq.Array(&l.PropertyImages),
			&l.DisplayAddress, &l.Price, &l.SizeFt, &l.SizeAc, &l.PostalCode, &tenure, &saleType,
			&l.DetailedDescription, &l.PropertySubType,
			&l.Agent.CompanyName, &l.Agent.Name, &l.Agent.Email, &l.Agent.Phone,
			&l.Agent.Street, &l.Agent.City, &l.Agent.Postcode, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.Tenure = normalize.Tenure(tenure)
		l.SaleType = normalize.SaleType(saleType)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
