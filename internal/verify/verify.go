package verify

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Verifier performs read-only liveness checks on candidate source URLs.
// Checks are idempotent; nothing is fetched beyond headers unless the host
// rejects HEAD.
type Verifier struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	logger      *log.Logger
}

// New builds a verifier. A nil client gets a redirect-following default.
func New(client *http.Client, timeout time.Duration, concurrency int, logger *log.Logger) *Verifier {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{client: client, timeout: timeout, concurrency: concurrency, logger: logger}
}

// Malformed reports whether a collaborator-returned URL is truncated or
// unparseable. Such URLs are discarded outright, never repaired.
func Malformed(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	if strings.HasSuffix(raw, "...") || strings.HasSuffix(raw, "…") {
		return true
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return true
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return true
	}
	if parsed.Host == "" {
		return true
	}
	return false
}

// Check probes each URL and returns its pass/fail status keyed by the URL
// exactly as given. Malformed URLs fail without a request being made.
func (v *Verifier) Check(ctx context.Context, urls []string) map[string]bool {
	results := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, v.concurrency)
	for _, raw := range urls {
		mu.Lock()
		if _, seen := results[raw]; seen {
			mu.Unlock()
			continue
		}
		results[raw] = false
		mu.Unlock()

		wg.Add(1)
		sem <- struct{}{}
		go func(raw string) {
			defer wg.Done()
			defer func() { <-sem }()
			alive := v.probe(ctx, raw)
			mu.Lock()
			results[raw] = alive
			mu.Unlock()
		}(raw)
	}
	wg.Wait()
	return results
}

func (v *Verifier) probe(ctx context.Context, raw string) bool {
	if Malformed(raw) {
		v.logger.Printf("[VERIFY] discarding malformed url %q", raw)
		return false
	}
	status, err := v.request(ctx, http.MethodHead, raw)
	if err == nil && status == http.StatusMethodNotAllowed {
		// some hosts reject HEAD outright, fall back to GET
		status, err = v.request(ctx, http.MethodGet, raw)
	}
	if err != nil {
		v.logger.Printf("[VERIFY] %s unreachable: %v", raw, err)
		return false
	}
	return status < 400
}

func (v *Verifier) request(ctx context.Context, method, raw string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, raw, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
