package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

func gatewayFor(t *testing.T, endpoint string) *HTTPGateway {
	t.Helper()
	cfg := config.GatewayConfig{
		Search: config.CollaboratorConfig{Endpoint: endpoint, Timeout: 2 * time.Second},
		Video:  config.CollaboratorConfig{Endpoint: endpoint, Timeout: 2 * time.Second},
		Social: config.CollaboratorConfig{Endpoint: endpoint, Timeout: 2 * time.Second},
	}
	return NewHTTPGateway(cfg)
}

func TestDispatchRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var task Task
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			t.Errorf("decoding task: %v", err)
		}
		if task.Objective == "" {
			t.Errorf("expected objective in request")
		}
		json.NewEncoder(w).Encode(Response{Results: []Result{{
			Title:   "model launch",
			Summary: "a new model launched today",
			Sources: []report.Source{{Title: "blog", URL: "https://example.com/post"}},
		}}})
	}))
	defer srv.Close()

	g := gatewayFor(t, srv.URL)
	resp, err := g.Dispatch(context.Background(), Task{Kind: KindSearch, Objective: "find launches"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "model launch" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Empty() {
		t.Fatalf("response should not be empty")
	}
	if resp.Size() == 0 {
		t.Fatalf("expected non-zero size")
	}
}

func TestDispatchRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Response{Results: []Result{{Title: "ok", Summary: "ok"}}})
	}))
	defer srv.Close()

	cfg := config.GatewayConfig{
		Search: config.CollaboratorConfig{Endpoint: srv.URL, Timeout: 2 * time.Second, MaxRetries: 2},
		Video:  config.CollaboratorConfig{Endpoint: srv.URL},
		Social: config.CollaboratorConfig{Endpoint: srv.URL},
	}
	g := NewHTTPGateway(cfg)
	g.backoff = time.Millisecond
	resp, err := g.Dispatch(context.Background(), Task{Kind: KindSearch, Objective: "retry me"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if resp.Empty() {
		t.Fatalf("expected results after retry")
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	g := gatewayFor(t, "http://127.0.0.1:0")
	if _, err := g.Dispatch(context.Background(), Task{Kind: Kind("email")}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestResponseEmpty(t *testing.T) {
	if !(Response{}).Empty() {
		t.Fatalf("zero response should be empty")
	}
	if !(Response{Results: []Result{{}}}).Empty() {
		t.Fatalf("blank results should be empty")
	}
}
