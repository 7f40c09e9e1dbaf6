package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"property-scraper/models"
	"property-scraper/normalize"
)

// Columns is the canonical column order of the CSV output.
var Columns = []string{
	"site",
	"listingUrl",
	"brochureUrl",
	"propertyImage",
	"displayAddress",
	"price",
	"sizeFt",
	"sizeAc",
	"postalCode",
	"tenure",
	"saleType",
	"detailedDescription",
	"propertySubType",
	"agentCompanyName",
	"agentName",
	"agentEmail",
	"agentPhone",
	"agentStreet",
	"agentCity",
	"agentPostcode",
	"scrapedAt",
}

// CSVWriter writes cleaned listings to a CSV file. Absent values are empty
// cells. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if err := c.writer.Write(Row(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}

// Row renders a listing in Columns order.
func Row(l *models.Listing) []string {
	scraped := ""
	if !l.ScrapedAt.IsZero() {
		scraped = l.ScrapedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		l.Site,
		l.ListingURL,
		strings.Join(l.BrochureURLs, ListSeparator),
		strings.Join(l.PropertyImages, ListSeparator),
		l.DisplayAddress,
		normalize.FormatPrice(l.Price),
		normalize.FormatArea(l.SizeFt),
		normalize.FormatArea(l.SizeAc),
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
		scraped,
	}
}
