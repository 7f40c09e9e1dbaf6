package scraper

import (
	"net/url"
	"strings"

	"property-scraper/config"
	"property-scraper/models"
	"property-scraper/normalize"
)

// extractListing reads every configured field out of one listing record.
// Multi-node text fields are joined and cleaned; URL fields are resolved
// against base and deduplicated in source order.
func extractListing(rec record, f config.FieldSelectors, a config.AgentSelectors, base *url.URL) *models.RawListing {
	raw := &models.RawListing{
		ListingURL:      firstURL(rec.values(f.ListingURL), base),
		BrochureURLs:    urls(rec.values(f.BrochureURL), base),
		PropertyImages:  urls(rec.values(f.PropertyImage), base),
		DisplayAddress:  text(rec, f.DisplayAddress),
		PriceText:       text(rec, f.Price),
		SizeText:        text(rec, f.Size),
		PostcodeText:    text(rec, f.Postcode),
		TenureText:      text(rec, f.Tenure),
		SaleTypeText:    text(rec, f.SaleType),
		Description:     text(rec, f.Description),
		PropertySubType: text(rec, f.PropertySubType),
	}

	for _, block := range rec.records(a.Container) {
		agent := models.RawAgent{
			CompanyName: text(block, a.CompanyName),
			Name:        text(block, a.Name),
			Email:       strings.TrimPrefix(text(block, a.Email), "mailto:"),
			Phone:       strings.TrimPrefix(text(block, a.Phone), "tel:"),
			Street:      text(block, a.Street),
			City:        text(block, a.City),
			Postcode:    text(block, a.Postcode),
		}
		if agent != (models.RawAgent{}) {
			raw.Agents = append(raw.Agents, agent)
		}
	}
	return raw
}

func text(rec record, sel string) string {
	return normalize.Clean(rec.values(sel)...)
}

func urls(values []string, base *url.URL) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		u := resolve(v, base)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func firstURL(values []string, base *url.URL) string {
	for _, v := range values {
		if u := resolve(v, base); u != "" {
			return u
		}
	}
	return ""
}

// resolve turns a possibly relative link into an absolute URL. Fragment-only
// and javascript: links resolve to "".
func resolve(ref string, base *url.URL) string {
	ref = normalize.Clean(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(strings.ToLower(ref), "javascript:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.Fragment = ""
	return u.String()
}

// mergeListing copies into dst every field dst is missing from src.
// Values already on dst are never overwritten.
func mergeListing(dst, src *models.RawListing) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.ListingURL, src.ListingURL)
	fill(&dst.DisplayAddress, src.DisplayAddress)
	fill(&dst.PriceText, src.PriceText)
	fill(&dst.SizeText, src.SizeText)
	fill(&dst.PostcodeText, src.PostcodeText)
	fill(&dst.TenureText, src.TenureText)
	fill(&dst.SaleTypeText, src.SaleTypeText)
	fill(&dst.Description, src.Description)
	fill(&dst.PropertySubType, src.PropertySubType)

	if len(dst.BrochureURLs) == 0 {
		dst.BrochureURLs = src.BrochureURLs
	}
	if len(dst.PropertyImages) == 0 {
		dst.PropertyImages = src.PropertyImages
	}
	if len(dst.Agents) == 0 {
		dst.Agents = src.Agents
	}
}
