package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPostcode(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Unit 4, SW1A 1AA London", "SW1A 1AA"},
		{"unit 4, sw1a 1aa london", "SW1A 1AA"},
		{"Leeds LS1 4DY", "LS1 4DY"},
		{"Manchester M11AE", "M1 1AE"},
		{"Offices in EC2 close to B33 8TH", "B33 8TH"},
		{"Located in central SW1A", "SW1A"},
		{"Birmingham, B1", "B1"},
		{"No postcode here", ""},
		{"", ""},
		{"\xff\xfe", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPostcode(tt.text), "ExtractPostcode(%q)", tt.text)
	}
}

func TestPostcodeArea(t *testing.T) {
	assert.Equal(t, "SW", PostcodeArea("SW1A 1AA"))
	assert.Equal(t, "M", PostcodeArea("m1 1ae"))
	assert.Equal(t, "", PostcodeArea(""))
}
