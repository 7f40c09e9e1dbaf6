package normalize

import (
	"database/sql"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	poaRe = regexp.MustCompile(`\bp\.?o\.?a\b|price on application|upon application|on application`)

	// Currency-marked amount with an optional magnitude: a k, m or mn suffix
	// glued to the number, or the word "million".
	amountRe = regexp.MustCompile(`([£€])\s*(\d*\.?\d+)(?:\s*(million)\b|(k|mn|m)\b)?`)

	// A qualifier right after an amount makes it a rent or a per-area rate.
	perQualifierRe = regexp.MustCompile(`^[\s(\[]*(?:(?:\+|plus)\s*vat\s*)?(?:` +
		`per\s+(?:annum|year|yr|calendar month|month|week|sq|square|acre|ft|foot|m2)` +
		`|p\.?a\.?(?:[^a-z]|$)|p/a|p\.?c\.?m\.?(?:[^a-z]|$)|p\.?w\.?(?:[^a-z]|$)|psf|pa\b` +
		`|sq\.?\s*ft|sqft|sq\.?\s*m|sqm|ft2|m2` +
		`|/\s*(?:annum|year|yr|pa|month|mth|pcm|week|wk|sq|sf|ft|m2|acre|ac)` +
		`|rent\b)`)

	// A rent phrase after an amount that introduces a figure of its own, as in
	// "£1.2m (rental income £80,000 pa)". The rent is that later figure.
	rentNextAmountRe = regexp.MustCompile(`^[\s(\[,;:-]*rent(?:al|s)?\b[^£€\d]{0,20}[£€]`)

	// A rent phrase just before an amount, e.g. "rent of £", "rental income £".
	rentLeadRe = regexp.MustCompile(`\brent(?:al|s)?\b[^£€\d]{0,20}$`)
)

var magnitudes = map[string]int64{
	"k":       1_000,
	"m":       1_000_000,
	"million": 1_000_000,
	"mn":      1_000_000,
}

// ExtractPrice returns the asking price in whole currency units.
//
// Only listings for sale carry a price: any other sale type, or a "price on
// application" signal, gives an invalid result. Amounts qualified as rent or
// as a per-period or per-area rate are ignored, and of the remaining amounts
// the smallest wins. Fractions are truncated toward zero.
func ExtractPrice(text string, saleType SaleType) sql.NullInt64 {
	if saleType != ForSale {
		return sql.NullInt64{}
	}
	s := strings.ReplaceAll(fold(text), ",", "")
	if s == "" || poaRe.MatchString(s) {
		return sql.NullInt64{}
	}

	var best sql.NullInt64
	prevEnd := 0
	for _, loc := range amountRe.FindAllStringSubmatchIndex(s, -1) {
		lead, rest := s[prevEnd:loc[0]], s[loc[1]:]
		prevEnd = loc[1]

		if rentLeadRe.MatchString(lead) {
			continue
		}
		if perQualifierRe.MatchString(rest) && !rentNextAmountRe.MatchString(rest) {
			continue
		}

		suffix := ""
		switch {
		case loc[6] >= 0:
			suffix = s[loc[6]:loc[7]]
		case loc[8] >= 0:
			suffix = s[loc[8]:loc[9]]
		}
		v, ok := amountValue(s[loc[4]:loc[5]], suffix)
		if !ok || v <= 0 {
			continue
		}
		if !best.Valid || v < best.Int64 {
			best = sql.NullInt64{Int64: v, Valid: true}
		}
	}
	return best
}

// amountValue scales number by the suffix exactly and truncates toward zero.
func amountValue(number, suffix string) (int64, bool) {
	r, ok := new(big.Rat).SetString(number)
	if !ok {
		return 0, false
	}
	if mult, ok := magnitudes[suffix]; ok {
		r.Mul(r, new(big.Rat).SetInt64(mult))
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}

// FormatPrice renders a price as the integer string used in output files,
// or "" when absent.
func FormatPrice(p sql.NullInt64) string {
	if !p.Valid {
		return ""
	}
	return strconv.FormatInt(p.Int64, 10)
}

// FormatArea renders an area with at most three decimals and no trailing
// zeros, or "" when absent.
func FormatArea(a sql.NullFloat64) string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatFloat(a.Float64, 'f', -1, 64)
}
