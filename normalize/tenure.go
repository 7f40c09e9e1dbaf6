package normalize

import "strings"

// Tenure is the legal ownership structure of a property.
type Tenure string

const (
	TenureUnknown Tenure = ""
	Freehold      Tenure = "Freehold"
	Leasehold     Tenure = "Leasehold"
)

type tenureConfig struct {
	leaseTrigger string
}

// TenureOption adjusts ClassifyTenure for one site's wording.
type TenureOption func(*tenureConfig)

// BroadLease makes any mention of "lease" count as leasehold, not just the
// full word "leasehold".
func BroadLease() TenureOption {
	return func(c *tenureConfig) {
		c.leaseTrigger = "lease"
	}
}

// ClassifyTenure maps free text to Freehold, Leasehold or TenureUnknown.
// Freehold is checked first, so text mentioning both reads as Freehold.
func ClassifyTenure(text string, opts ...TenureOption) Tenure {
	cfg := &tenureConfig{leaseTrigger: "leasehold"}
	for _, opt := range opts {
		opt(cfg)
	}

	lower := fold(text)
	switch {
	case lower == "":
		return TenureUnknown
	case strings.Contains(lower, "freehold"):
		return Freehold
	case strings.Contains(lower, cfg.leaseTrigger):
		return Leasehold
	}
	return TenureUnknown
}
