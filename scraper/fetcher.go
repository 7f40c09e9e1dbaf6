package scraper

import (
	"context"
	"fmt"
	"net/http"
)

// Fetcher retrieves the body of one page. waitFor names a DOM marker that
// must be present before the page counts as loaded; fetchers that do not
// render pages ignore it.
type Fetcher interface {
	Fetch(ctx context.Context, url, waitFor string) ([]byte, error)
}

// FetchError reports a page that could not be retrieved.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the fetch may help.
func (e *FetchError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}
