package normalize

import "regexp"

// SaleType is the market status of a listing.
type SaleType string

const (
	SaleTypeUnknown SaleType = ""
	ForSale         SaleType = "For Sale"
	ToLet           SaleType = "To Let"
	Sold            SaleType = "Sold"
	UnderOffer      SaleType = "Under Offer"
)

var (
	soldRe       = regexp.MustCompile(`\b(sold|acquired)\b`)
	underOfferRe = regexp.MustCompile(`\b(under offer|sale agreed|sstc)\b`)
	letAgreedRe  = regexp.MustCompile(`\blet agreed\b`)
	letRe        = regexp.MustCompile(`\b(to let|let|to rent|for rent|to lease|for lease)\b`)
	saleRe       = regexp.MustCompile(`\b(for sale|sale)\b`)
)

type saleTypeConfig struct {
	preferLet bool
}

// SaleTypeOption adjusts ClassifySaleType for one site's wording.
type SaleTypeOption func(*saleTypeConfig)

// PreferLet resolves text that offers a property both for sale and to let as
// To Let instead of For Sale. Only the tie-break changes.
func PreferLet() SaleTypeOption {
	return func(c *saleTypeConfig) {
		c.preferLet = true
	}
}

// ClassifySaleType maps a status badge, heading or title to a SaleType.
//
// Checks run in priority order: sold, under offer, let agreed, then sale and
// let together (For Sale unless PreferLet), let alone, sale alone.
func ClassifySaleType(text string, opts ...SaleTypeOption) SaleType {
	cfg := &saleTypeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	lower := fold(text)
	if lower == "" {
		return SaleTypeUnknown
	}

	if soldRe.MatchString(lower) {
		return Sold
	}
	if underOfferRe.MatchString(lower) {
		return UnderOffer
	}
	if letAgreedRe.MatchString(lower) {
		return ToLet
	}

	sale := saleRe.MatchString(lower)
	let := letRe.MatchString(lower)
	switch {
	case sale && let && cfg.preferLet:
		return ToLet
	case sale:
		return ForSale
	case let:
		return ToLet
	}
	return SaleTypeUnknown
}
