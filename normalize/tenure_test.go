package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTenure(t *testing.T) {
	tests := []struct {
		text string
		opts []TenureOption
		want Tenure
	}{
		{"Freehold", nil, Freehold},
		{"TENURE: LEASEHOLD (999 years)", nil, Leasehold},
		{"Share of freehold", nil, Freehold},
		{"leasehold excluded, freehold available", nil, Freehold},
		{"New lease available", nil, TenureUnknown},
		{"New lease available", []TenureOption{BroadLease()}, Leasehold},
		{"Freehold or new lease", []TenureOption{BroadLease()}, Freehold},
		{"", nil, TenureUnknown},
		{"\xff\xfe", nil, TenureUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyTenure(tt.text, tt.opts...), "ClassifyTenure(%q)", tt.text)
	}
}

func TestTenureIgnoresSaleSignals(t *testing.T) {
	text := "To Let - freehold warehouse, previously sold"
	assert.Equal(t, Freehold, ClassifyTenure(text))
	assert.Equal(t, Sold, ClassifySaleType(text))

	text = "For sale: leasehold retail unit"
	assert.Equal(t, Leasehold, ClassifyTenure(text))
	assert.Equal(t, ForSale, ClassifySaleType(text))
}
