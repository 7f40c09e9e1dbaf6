package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches static pages and JSON feeds with a fresh colly
// collector per request.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewCollyFetcher creates a CollyFetcher. A zero timeout means 30 seconds.
func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch returns the response body of url. waitFor is ignored.
func (f *CollyFetcher) Fetch(ctx context.Context, url, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	c := f.newCollector()

	var body []byte
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, url, nil, collyCtx, nil); err != nil {
		return nil, &FetchError{URL: url, Status: status, Err: err}
	}
	if reqErr != nil {
		return nil, &FetchError{URL: url, Status: status, Err: reqErr}
	}
	if status >= 400 {
		return nil, &FetchError{URL: url, Status: status, Err: fmt.Errorf("unexpected status")}
	}
	return body, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	opts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if f.userAgent != "" {
		opts = append(opts, colly.UserAgent(f.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.timeout)
	// Older agency sites still serve Latin-1 pages; "£" must survive.
	c.DetectCharset = true

	c.OnRequest(func(r *colly.Request) {
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})

	return c
}
