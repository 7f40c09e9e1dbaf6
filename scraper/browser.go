package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher loads pages in a shared headless Chrome and returns the
// DOM once a marker element is ready.
type BrowserFetcher struct {
	chromeBin string
	userAgent string
	timeout   time.Duration

	once        sync.Once
	startErr    error
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelTab   context.CancelFunc
}

// NewBrowserFetcher creates a BrowserFetcher. The browser starts lazily on
// the first Fetch. An empty chromeBin means look one up on the system.
func NewBrowserFetcher(chromeBin, userAgent string, timeout time.Duration) *BrowserFetcher {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BrowserFetcher{chromeBin: chromeBin, userAgent: userAgent, timeout: timeout}
}

func (f *BrowserFetcher) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}
	if f.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(f.chromeBin))
	}

	f.allocCtx, f.cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	f.browserCtx, f.cancelTab = chromedp.NewContext(f.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// An empty Run launches the browser so later tabs share it.
	if err := chromedp.Run(f.browserCtx); err != nil {
		f.startErr = fmt.Errorf("chromedp: start browser: %w", err)
	}
}

// Fetch navigates to url, waits for waitFor (or the body) and returns the
// page's outer HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url, waitFor string) ([]byte, error) {
	f.once.Do(f.start)
	if f.startErr != nil {
		return nil, &FetchError{URL: url, Err: f.startErr}
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	// Tie the tab to the caller's context as well.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if waitFor == "" {
		waitFor = "body"
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("chromedp: %w", err)}
	}
	return []byte(html), nil
}

// Close shuts the browser down if it was started.
func (f *BrowserFetcher) Close() {
	if f.cancelTab != nil {
		f.cancelTab()
	}
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
