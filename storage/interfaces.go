package storage

import "property-scraper/models"

// ListingWriter is the interface any listing sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListSeparator joins multi-valued fields (brochure and image URLs) in flat
// outputs.
const ListSeparator = "|"
