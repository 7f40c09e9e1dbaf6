package normalize

import (
	"regexp"
	"strings"
)

var (
	fullPostcodeRe    = regexp.MustCompile(`\b([A-Z]{1,2}\d{1,2}[A-Z]?)\s*(\d[A-Z]{2})\b`)
	partialPostcodeRe = regexp.MustCompile(`\b[A-Z]{1,2}\d{1,2}[A-Z]?\b`)
	postcodeAreaRe    = regexp.MustCompile(`^[A-Z]{1,2}`)
)

// ExtractPostcode returns the first UK postcode found in text, or "".
//
// A full postcode anywhere in the text beats an outward code on its own, even
// when the outward code appears first. Full postcodes come back as
// "OUTWARD INWARD" with a single space. The match is deliberately loose: it
// runs over marketing prose, not address fields.
func ExtractPostcode(text string) string {
	upper := strings.ToUpper(Clean(text))
	if upper == "" {
		return ""
	}
	if m := fullPostcodeRe.FindStringSubmatch(upper); m != nil {
		return m[1] + " " + m[2]
	}
	return partialPostcodeRe.FindString(upper)
}

// PostcodeArea returns the area letters of a postcode ("SW" for "SW1A 1AA").
func PostcodeArea(postcode string) string {
	return postcodeAreaRe.FindString(strings.ToUpper(strings.TrimSpace(postcode)))
}
