package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	KindHTML = "html"
	KindJSON = "json"

	FetcherStatic  = "static"
	FetcherBrowser = "browser"

	SelectorCSS   = "css"
	SelectorXPath = "xpath"
)

// FieldSelectors locates the raw text of each canonical field inside one
// listing. For HTML sites a selector may end in "@attr" to read an attribute
// instead of node text; for JSON sites each value is a gjson path.
type FieldSelectors struct {
	ListingURL      string `yaml:"listing_url"`
	BrochureURL     string `yaml:"brochure_url"`
	PropertyImage   string `yaml:"property_image"`
	DisplayAddress  string `yaml:"display_address"`
	Price           string `yaml:"price"`
	Size            string `yaml:"size"`
	Postcode        string `yaml:"postcode"`
	Tenure          string `yaml:"tenure"`
	SaleType        string `yaml:"sale_type"`
	Description     string `yaml:"description"`
	PropertySubType string `yaml:"property_sub_type"`
}

// AgentSelectors locates agent contacts. Container matches one block per
// contact, in source order; the other selectors are relative to it.
type AgentSelectors struct {
	Container   string `yaml:"container"`
	CompanyName string `yaml:"company_name"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Street      string `yaml:"street"`
	City        string `yaml:"city"`
	Postcode    string `yaml:"postcode"`
}

// DetailConfig describes the listing's own page, used to fill fields the
// results page leaves empty.
type DetailConfig struct {
	WaitFor string         `yaml:"wait_for"`
	Fields  FieldSelectors `yaml:"fields"`
	Agent   AgentSelectors `yaml:"agent"`
}

// SiteOptions tunes the shared classifiers for one site's wording.
type SiteOptions struct {
	PreferLet  bool `yaml:"prefer_let"`
	BroadLease bool `yaml:"broad_lease"`
}

// SiteConfig describes one agency website.
type SiteConfig struct {
	Name         string         `yaml:"name" validate:"required"`
	Disabled     bool           `yaml:"disabled"`
	Kind         string         `yaml:"kind" validate:"oneof=html json"`
	Fetcher      string         `yaml:"fetcher" validate:"oneof=static browser"`
	SelectorType string         `yaml:"selector_type" validate:"omitempty,oneof=css xpath"`
	StartURLs    []string       `yaml:"start_urls" validate:"min=1,dive,http_url"`
	WaitFor      string         `yaml:"wait_for"`
	Listing      string         `yaml:"listing" validate:"required"`
	Fields       FieldSelectors `yaml:"fields"`
	Agent        AgentSelectors `yaml:"agent"`
	Detail       *DetailConfig  `yaml:"detail"`
	Options      SiteOptions    `yaml:"options"`
}

// SitesFile is the top-level shape of the site registry.
type SitesFile struct {
	Sites []SiteConfig `yaml:"sites"`
}

// LoadSites reads and validates the site registry at path.
func LoadSites(path string) ([]SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read sites %q: %w", path, err)
	}
	return ParseSites(data)
}

// ParseSites decodes a YAML site registry, fills defaults and validates it.
func ParseSites(data []byte) ([]SiteConfig, error) {
	var f SitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse sites: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Sites))
	var errs []error
	for i := range f.Sites {
		s := &f.Sites[i]
		s.applyDefaults()
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[s.Name]; dup {
			errs = append(errs, fmt.Errorf("site %q: duplicate name", s.Name))
		}
		seen[s.Name] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: invalid sites: %w", err)
	}
	return f.Sites, nil
}

func (s *SiteConfig) applyDefaults() {
	if s.Kind == "" {
		s.Kind = KindHTML
	}
	if s.Fetcher == "" {
		s.Fetcher = FetcherStatic
	}
	if s.SelectorType == "" && s.Kind == KindHTML {
		s.SelectorType = SelectorCSS
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their registry names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every problem with the site definition at once.
func (s *SiteConfig) Validate() error {
	var errs []error
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("site %q: %w", s.Name, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	if s.Kind == KindHTML && s.SelectorType == "" {
		errs = append(errs, errors.New("html sites need a selector_type"))
	}
	if s.Kind == KindJSON && s.Fetcher == FetcherBrowser {
		errs = append(errs, errors.New("json sites must use the static fetcher"))
	}
	if s.Fields.ListingURL == "" && s.Fields.BrochureURL == "" {
		errs = append(errs, errors.New("listing_url or brochure_url selector is required"))
	}
	if s.Detail != nil && s.Fields.ListingURL == "" {
		errs = append(errs, errors.New("detail pages need a listing_url selector"))
	}

	if len(errs) == 0 {
		return nil
	}
	name := s.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Errorf("site %q: %w", name, errors.Join(errs...))
}

func describeFieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("unknown %s %q", fe.Field(), fe.Value())
	case "min":
		return errors.New("at least one start_url is required")
	case "http_url":
		return fmt.Errorf("%s %q is not an http(s) URL", fe.Field(), fe.Value())
	}
	return fmt.Errorf("%s fails %q", fe.Field(), fe.Tag())
}
