package storage

import (
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-scraper/models"
)

func TestInsertQueryPlaceholders(t *testing.T) {
	q := insertQuery(2)
	n := len(insertColumns)

	assert.True(t, strings.HasPrefix(q, "INSERT INTO listings (site, listing_key, "))
	assert.True(t, strings.HasSuffix(q, "ON CONFLICT (listing_key) DO NOTHING"))
	assert.Contains(t, q, "($1,$2,")
	assert.Contains(t, q, "($"+strconv.Itoa(n+1)+",")
	assert.Contains(t, q, "$"+strconv.Itoa(2*n)+")")
	assert.NotContains(t, q, "$"+strconv.Itoa(2*n+1))
}

func TestListingArgs(t *testing.T) {
	l := fullListing()
	args := listingArgs(l)
	require.Len(t, args, len(insertColumns))

	assert.Equal(t, "https://northern.test/property/17", args[1])
	assert.Equal(t, sql.NullInt64{Int64: 1250000, Valid: true}, args[6])
	assert.Equal(t, sql.NullFloat64{}, args[8], "absent land area is NULL")
}

func TestListingArgsBrochureKeyAndEmptyArrays(t *testing.T) {
	l := &models.Listing{BrochureURLs: []string{"https://x.test/b.pdf"}}
	args := listingArgs(l)

	assert.Equal(t, "https://x.test/b.pdf", args[1])
	images, ok := args[4].(*pq.StringArray)
	require.True(t, ok)
	assert.NotNil(t, *images)
	assert.Empty(t, *images)
}
