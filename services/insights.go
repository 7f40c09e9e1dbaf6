package services

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"property-scraper/models"
	"property-scraper/normalize"
	"property-scraper/utils"
)

const topPostcodeAreas = 10

// InsightService summarises a run's cleaned listings.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &InsightService{logger: logger}
}

// Generate computes the run report. Price statistics only cover listings
// that carry a price, which the assembler sets for For Sale listings alone.
func (s *InsightService) Generate(listings []*models.Listing) *models.RunReport {
	report := &models.RunReport{
		BySite:         make(map[string]int),
		BySaleType:     make(map[normalize.SaleType]int),
		ByTenure:       make(map[normalize.Tenure]int),
		ByPostcodeArea: make(map[string]int),
	}

	var total float64
	for _, l := range listings {
		if l == nil {
			continue
		}
		report.TotalListings++
		report.BySite[l.Site]++
		report.BySaleType[l.SaleType]++
		report.ByTenure[l.Tenure]++
		if area := normalize.PostcodeArea(l.PostalCode); area != "" {
			report.ByPostcodeArea[area]++
		}

		if l.Price.Valid {
			p := l.Price.Int64
			if report.PricedListings == 0 || p < report.MinPrice {
				report.MinPrice = p
			}
			if report.PricedListings == 0 || p > report.MaxPrice {
				report.MaxPrice = p
				report.MostExpensive = l
			}
			report.PricedListings++
			total += float64(p)
		}

		if l.SizeFt.Valid {
			report.WithFloorArea++
			report.LargestFloorFt = math.Max(report.LargestFloorFt, l.SizeFt.Float64)
		}
		if l.SizeAc.Valid {
			report.WithLandArea++
			report.LargestLandAc = math.Max(report.LargestLandAc, l.SizeAc.Float64)
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
	}

	s.logger.Debug("[insights] Report over %d listings, %d priced", report.TotalListings, report.PricedListings)
	return report
}

// Print renders the report as a set of tables.
func (s *InsightService) Print(w io.Writer, r *models.RunReport) {
	overview := newTable(w, "Run overview")
	overview.AppendRows([]table.Row{
		{"Total listings", r.TotalListings},
		{"Listings with floor area", r.WithFloorArea},
		{"Listings with land area", r.WithLandArea},
		{"Largest floor area (sq ft)", formatFloat(r.LargestFloorFt)},
		{"Largest site (acres)", formatFloat(r.LargestLandAc)},
	})
	overview.Render()

	prices := newTable(w, "Asking prices")
	if r.PricedListings == 0 {
		prices.AppendRow(table.Row{"No price data available", ""})
	} else {
		prices.AppendRows([]table.Row{
			{"Priced listings", r.PricedListings},
			{"Average", fmt.Sprintf("£%.2f", r.AveragePrice)},
			{"Minimum", fmt.Sprintf("£%d", r.MinPrice)},
			{"Maximum", fmt.Sprintf("£%d", r.MaxPrice)},
		})
		if r.MostExpensive != nil {
			prices.AppendRow(table.Row{"Most expensive", truncate(r.MostExpensive.DisplayAddress, 50)})
		}
	}
	prices.Render()

	renderCounts(w, "Listings by site", "Site", r.BySite)
	renderCounts(w, "Listings by sale type", "Sale type", stringKeys(r.BySaleType))
	renderCounts(w, "Listings by tenure", "Tenure", stringKeys(r.ByTenure))
	renderCounts(w, "Top postcode areas", "Area", topN(r.ByPostcodeArea, topPostcodeAreas))
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t
}

func renderCounts(w io.Writer, title, label string, counts map[string]int) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{label, "Listings"})
	if len(counts) == 0 {
		t.AppendRow(table.Row{"none", 0})
	}
	for _, kc := range sortedCounts(counts) {
		t.AppendRow(table.Row{kc.key, kc.count})
	}
	t.Render()
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders by count descending, then key.
func sortedCounts(counts map[string]int) []keyCount {
	out := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		if k == "" {
			k = "unknown"
		}
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func topN(counts map[string]int, n int) map[string]int {
	sorted := sortedCounts(counts)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make(map[string]int, len(sorted))
	for _, kc := range sorted {
		out[kc.key] = kc.count
	}
	return out
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] += v
	}
	return out
}

func formatFloat(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
