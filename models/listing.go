package models

import (
	"database/sql"
	"strings"
	"time"

	"property-scraper/normalize"
)

// RawAgent is one agent contact block as it appears on the source page.
type RawAgent struct {
	CompanyName string
	Name        string
	Email       string
	Phone       string
	Street      string
	City        string
	Postcode    string
}

// RawListing holds the unprocessed text fragments a site adapter pulled from
// one listing. Nothing here has been normalized beyond joining node text.
type RawListing struct {
	Site            string
	ListingURL      string
	BrochureURLs    []string
	PropertyImages  []string
	DisplayAddress  string
	PriceText       string
	SizeText        string
	PostcodeText    string
	TenureText      string
	SaleTypeText    string
	Description     string
	PropertySubType string
	Agents          []RawAgent
	ScrapedAt       time.Time
}

// Key identifies the listing within a run: its listing URL, else its first
// brochure URL. An empty key means the listing cannot be identified.
func (r *RawListing) Key() string {
	if u := strings.TrimSpace(r.ListingURL); u != "" {
		return u
	}
	for _, u := range r.BrochureURLs {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}

// Agent is the primary contact of a listing.
type Agent struct {
	CompanyName string
	Name        string
	Email       string
	Phone       string
	Street      string
	City        string
	Postcode    string
}

// Listing is the canonical record shared by every site. Absent numeric
// fields are invalid sql.Null values; absent text fields are "".
type Listing struct {
	ID                  int64
	Site                string
	ListingURL          string
	BrochureURLs        []string
	PropertyImages      []string
	DisplayAddress      string
	Price               sql.NullInt64
	SizeFt              sql.NullFloat64
	SizeAc              sql.NullFloat64
	PostalCode          string
	Tenure              normalize.Tenure
	SaleType            normalize.SaleType
	DetailedDescription string
	PropertySubType     string
	Agent               Agent
	ScrapedAt           time.Time
}

// RunReport holds the summary computed over one run's cleaned listings.
type RunReport struct {
	TotalListings  int
	BySite         map[string]int
	BySaleType     map[normalize.SaleType]int
	ByTenure       map[normalize.Tenure]int
	ByPostcodeArea map[string]int
	PricedListings int
	AveragePrice   float64
	MinPrice       int64
	MaxPrice       int64
	MostExpensive  *Listing
	WithFloorArea  int
	WithLandArea   int
	LargestFloorFt float64
	LargestLandAc  float64
}
