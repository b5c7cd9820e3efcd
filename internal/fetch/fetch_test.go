package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Model Launch</title></head><body>
<article>
<h1>Model Launch</h1>
<p>A research lab released a new model today. The model handles longer context.
Independent benchmarks are pending. Analysts expect pricing details within a week.
The release notes credit a smaller training run than previous generations.</p>
</article>
</body></html>`

func newTestFetcher(maxChars int) *Fetcher {
	return New(config.FetchConfig{
		Enabled:        true,
		Timeout:        2 * time.Second,
		MaxContentSize: maxChars,
	}, nil)
}

func TestFetchExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := newTestFetcher(50000)
	res, err := f.Fetch(context.Background(), srv.URL+"/story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "released a new model") {
		t.Fatalf("expected extracted text, got %q", res.Text)
	}
	if res.Truncated {
		t.Fatalf("short article should not be truncated")
	}
}

func TestFetchStatusError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher(50000)
	f.retries = 1
	f.backoff = time.Millisecond
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 403")
	}
	if calls != 2 {
		t.Fatalf("expected retry before giving up, got %d calls", calls)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	f := newTestFetcher(50000)
	if _, err := f.Fetch(context.Background(), "::bad::"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestTruncateAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one is cut off midway"
	got := truncateAtSentence(text, 50)
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("expected cut at sentence boundary, got %q", got)
	}
	if len(got) > 50 {
		t.Fatalf("truncated text too long: %d", len(got))
	}
	if got := truncateAtSentence("short", 50); got != "short" {
		t.Fatalf("short text should pass through, got %q", got)
	}
}
