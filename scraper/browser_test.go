package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if findChromeBinary() == "" {
		t.Skip("no Chrome or Chromium binary found")
	}
}

func TestBrowserFetcherWaitsForRenderedMarker(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><div id="app"></div><script>
setTimeout(function () {
  var card = document.createElement("article");
  card.className = "listing";
  card.textContent = "Guide price £250,000";
  document.getElementById("app").appendChild(card);
}, 100);
</script></body></html>`))
	}))
	defer srv.Close()

	f := NewBrowserFetcher("", "", 20*time.Second)
	defer f.Close()

	body, err := f.Fetch(context.Background(), srv.URL, "article.listing")
	require.NoError(t, err)
	assert.Contains(t, string(body), `<article class="listing">Guide price £250,000</article>`)
}

func TestBrowserFetcherCancelledContext(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>never ready</p></body></html>"))
	}))
	defer srv.Close()

	f := NewBrowserFetcher("", "", 20*time.Second)
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL, "#does-not-exist")
	require.Error(t, err)
	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, srv.URL, fe.URL)
}
