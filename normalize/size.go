package normalize

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	SqFtPerSqM      = 10.7639
	AcresPerHectare = 2.47105
)

// Each pattern reads "N", "N-M" or "N to M" followed by a unit token that is
// not glued to a following letter or digit. NFKC has already turned "²" into "2".
const (
	areaNumber = `(\d*\.?\d+)(?:\s*(?:-|to)\s*(\d*\.?\d+))?\s*`
	unitEnd    = `(?:[^a-z0-9]|$)`
)

var (
	sqFtRe    = regexp.MustCompile(areaNumber + `(?:sq\.?\s*f(?:ee)?t\.?|square\s+f(?:ee|oo)t|ft2|sf)` + unitEnd)
	sqMRe     = regexp.MustCompile(areaNumber + `(?:sq\.?\s*m(?:etres?|eters?|trs?)?\.?|sqm|square\s+met(?:re|er)s?|m2)` + unitEnd)
	acreRe    = regexp.MustCompile(areaNumber + `(?:acres?|ac)` + unitEnd)
	hectareRe = regexp.MustCompile(areaNumber + `(?:hectares?|ha)` + unitEnd)

	dashReplacer = strings.NewReplacer(
		"‐", "-", "‑", "-", "‒", "-", "–", "-",
		"—", "-", "―", "-", "−", "-", "﹣", "-", "－", "-",
	)
)

// ExtractSize reads floor area (square feet) and land area (acres) out of
// free text. Each value is independent and absent when no mention is found.
//
// Square metres and hectares are only used, converted, when no square-foot or
// acre figure exists. A range resolves to its smaller end, and results are
// rounded to three decimal places.
func ExtractSize(text string) (ft, ac sql.NullFloat64) {
	s := prepareArea(text)
	if s == "" {
		return ft, ac
	}

	if v, ok := matchArea(sqFtRe, s); ok {
		ft = validFloat(v)
	} else if v, ok := matchArea(sqMRe, s); ok {
		ft = validFloat(v * SqFtPerSqM)
	}

	if v, ok := matchArea(acreRe, s); ok {
		ac = validFloat(v)
	} else if v, ok := matchArea(hectareRe, s); ok {
		ac = validFloat(v * AcresPerHectare)
	}
	return ft, ac
}

func prepareArea(text string) string {
	s := fold(text)
	s = strings.ReplaceAll(s, ",", "")
	return dashReplacer.Replace(s)
}

// labelRatio bounds how far apart the two ends of a range may be. Beyond it
// the first number is a label such as "Unit 3 - 1,500 sq ft", not a bound.
const labelRatio = 50

// matchArea returns the first mention of the unit, taking the minimum of a range.
func matchArea(re *regexp.Regexp, s string) (float64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	first, ok := parseArea(m[1])
	if !ok {
		return 0, false
	}
	if m[2] == "" {
		return first, true
	}
	second, ok := parseArea(m[2])
	if !ok {
		return first, true
	}
	if first*labelRatio < second {
		return second, true
	}
	return min(first, second), true
}

func parseArea(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0, false
	}
	return v, true
}

func validFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: round3(v), Valid: true}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
