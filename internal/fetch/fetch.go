package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/mohammad-safakhou/daybrief/config"
)

// Result is the extracted text content of one page.
type Result struct {
	URL       string
	Title     string
	Text      string
	Truncated bool
}

// Fetcher pulls page content for enrichment. A plain HTTP fetch with
// readability extraction runs first; the headless browser only fires as a
// fallback for pages the plain path cannot read.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxChars    int
	retries     int
	useHeadless bool
	backoff     time.Duration
	logger      *log.Logger
}

// New builds a fetcher from config.
func New(cfg config.FetchConfig, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxChars := cfg.MaxContentSize
	if maxChars <= 0 {
		maxChars = 50000
	}
	return &Fetcher{
		client:      &http.Client{},
		timeout:     timeout,
		maxChars:    maxChars,
		retries:     cfg.MaxRetries,
		useHeadless: cfg.UseHeadless,
		backoff:     500 * time.Millisecond,
		logger:      logger,
	}
}

// Fetch retrieves and extracts one page, retrying with backoff before
// falling back to headless rendering.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (Result, error) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return Result{}, fmt.Errorf("invalid url %q", raw)
	}

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		res, err := f.plain(ctx, raw, parsed)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt < f.retries {
			select {
			case <-time.After(f.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		}
	}

	if f.useHeadless {
		f.logger.Printf("[FETCH] plain fetch failed for %s, trying headless: %v", raw, lastErr)
		res, err := f.headless(ctx, raw, parsed)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("fetching %s: %w", raw, lastErr)
}

func (f *Fetcher) plain(ctx context.Context, raw string, parsed *url.URL) (Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, raw, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", "daybrief/1.0 (+research digest)")
	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, err
	}
	return f.extract(raw, string(body), parsed)
}

func (f *Fetcher) extract(raw, html string, parsed *url.URL) (Result, error) {
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return Result{}, fmt.Errorf("extracting content: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return Result{}, errors.New("no readable content")
	}
	truncated := false
	if len(text) > f.maxChars {
		text = truncateAtSentence(text, f.maxChars)
		truncated = true
	}
	return Result{
		URL:       raw,
		Title:     strings.TrimSpace(article.Title),
		Text:      text,
		Truncated: truncated,
	}, nil
}

// truncateAtSentence cuts text near max, preferring the last sentence end in
// the final stretch so the cut does not land mid-sentence.
func truncateAtSentence(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if idx := strings.LastIndex(cut, ". "); idx > max/2 {
		return cut[:idx+1]
	}
	return strings.TrimSpace(cut)
}
