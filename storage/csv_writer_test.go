package storage

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-scraper/models"
	"property-scraper/normalize"
)

func fullListing() *models.Listing {
	return &models.Listing{
		Site:                "northern",
		ListingURL:          "https://northern.test/property/17",
		BrochureURLs:        []string{"https://northern.test/a.pdf", "https://northern.test/b.pdf"},
		PropertyImages:      []string{"https://northern.test/1.jpg"},
		DisplayAddress:      "Unit 3, Riverside Park, Leeds LS10 1AB",
		Price:               sql.NullInt64{Int64: 1250000, Valid: true},
		SizeFt:              sql.NullFloat64{Float64: 1076.39, Valid: true},
		PostalCode:          "LS10 1AB",
		Tenure:              normalize.Freehold,
		SaleType:            normalize.ForSale,
		DetailedDescription: `A "modern" unit, with yard`,
		PropertySubType:     "Industrial",
		Agent:               models.Agent{CompanyName: "Northern Commercial", Name: "Amy Shaw"},
		ScrapedAt:           time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriterWritesCanonicalRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write([]*models.Listing{fullListing(), {ListingURL: "https://x.test/2"}}))
	require.NoError(t, w.Close())

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])

	row := records[1]
	assert.Equal(t, "https://northern.test/a.pdf|https://northern.test/b.pdf", row[2])
	assert.Equal(t, "1250000", row[5])
	assert.Equal(t, "1076.39", row[6])
	assert.Equal(t, "", row[7])
	assert.Equal(t, "Freehold", row[9])
	assert.Equal(t, "For Sale", row[10])
	assert.Equal(t, `A "modern" unit, with yard`, row[11])
	assert.Equal(t, "2024-05-02T10:00:00Z", row[20])

	empty := records[2]
	assert.Equal(t, "https://x.test/2", empty[1])
	for i, v := range empty {
		if i == 1 {
			continue
		}
		assert.Empty(t, v, Columns[i])
	}
}

func TestCSVWriterConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Write([]*models.Listing{fullListing(), fullListing()}))
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	assert.Len(t, readCSV(t, path), 1+16)
}

func TestRowColumnCount(t *testing.T) {
	assert.Len(t, Row(&models.Listing{}), len(Columns))
}
