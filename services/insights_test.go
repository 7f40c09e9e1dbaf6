package services

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"property-scraper/models"
	"property-scraper/normalize"
)

func price(v int64) sql.NullInt64    { return sql.NullInt64{Int64: v, Valid: true} }
func area(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Site: "alpha", ListingURL: "https://a.test/1", DisplayAddress: "Dock A, Leeds LS1 1AA", SaleType: normalize.ForSale, Tenure: normalize.Freehold, PostalCode: "LS1 1AA", Price: price(200000), SizeFt: area(5000)},
		{Site: "alpha", ListingURL: "https://a.test/2", DisplayAddress: "Yard B, Leeds LS2", SaleType: normalize.ForSale, Tenure: normalize.Leasehold, PostalCode: "LS2", Price: price(50000), SizeAc: area(2.5)},
		{Site: "beta", ListingURL: "https://b.test/3", DisplayAddress: "Mill C, Manchester M1 2AB", SaleType: normalize.ForSale, PostalCode: "M1 2AB", Price: price(1250000), SizeFt: area(12000.5)},
		{Site: "beta", ListingURL: "https://b.test/4", DisplayAddress: "Shop D, York", SaleType: normalize.ToLet, Tenure: normalize.Leasehold},
		{Site: "beta", ListingURL: "https://b.test/5", DisplayAddress: "Office E", SaleType: normalize.UnderOffer, SizeAc: area(0.75)},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.BySite["alpha"] != 2 || r.BySite["beta"] != 3 {
		t.Errorf("BySite: got %v", r.BySite)
	}
	if r.BySaleType[normalize.ForSale] != 3 || r.BySaleType[normalize.ToLet] != 1 {
		t.Errorf("BySaleType: got %v", r.BySaleType)
	}
	if r.ByTenure[normalize.Leasehold] != 2 || r.ByTenure[normalize.TenureUnknown] != 2 {
		t.Errorf("ByTenure: got %v", r.ByTenure)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.PricedListings != 3 {
		t.Errorf("PricedListings: got %d, want 3", r.PricedListings)
	}
	wantAvg := 500000.0
	if r.AveragePrice != wantAvg {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, wantAvg)
	}
	if r.MinPrice != 50000 {
		t.Errorf("MinPrice: got %d, want 50000", r.MinPrice)
	}
	if r.MaxPrice != 1250000 {
		t.Errorf("MaxPrice: got %d, want 1250000", r.MaxPrice)
	}
}

func TestInsightMostExpensive(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.MostExpensive == nil {
		t.Fatal("MostExpensive should not be nil")
	}
	if r.MostExpensive.ListingURL != "https://b.test/3" {
		t.Errorf("MostExpensive: got %q, want %q", r.MostExpensive.ListingURL, "https://b.test/3")
	}
}

func TestInsightMostExpensiveSingle(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	only := sampleListings()[:1]
	r := svc.Generate(only)
	if r.MostExpensive != only[0] {
		t.Errorf("MostExpensive should be the only priced listing")
	}
}

func TestInsightAreas(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.WithFloorArea != 2 || r.WithLandArea != 2 {
		t.Errorf("area coverage: got %d/%d, want 2/2", r.WithFloorArea, r.WithLandArea)
	}
	if r.LargestFloorFt != 12000.5 {
		t.Errorf("LargestFloorFt: got %v, want 12000.5", r.LargestFloorFt)
	}
	if r.LargestLandAc != 2.5 {
		t.Errorf("LargestLandAc: got %v, want 2.5", r.LargestLandAc)
	}
}

func TestInsightPostcodeAreas(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.ByPostcodeArea["LS"] != 2 {
		t.Errorf("LS count: got %d, want 2", r.ByPostcodeArea["LS"])
	}
	if r.ByPostcodeArea["M"] != 1 {
		t.Errorf("M count: got %d, want 1", r.ByPostcodeArea["M"])
	}
	if len(r.ByPostcodeArea) != 2 {
		t.Errorf("expected 2 postcode areas, got %v", r.ByPostcodeArea)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 || r.PricedListings != 0 || r.MostExpensive != nil {
		t.Errorf("expected an empty report, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))

	out := buf.String()
	for _, want := range []string{"Run overview", "Asking prices", "£1250000", "Mill C, Manchester M1 2AB", "Top postcode areas", "Under Offer", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q", want)
		}
	}
}

func TestInsightPrintEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(nil))
	if !strings.Contains(buf.String(), "No price data available") {
		t.Errorf("empty report should say there is no price data")
	}
}
