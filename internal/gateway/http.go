package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
)

// HTTPGateway talks JSON over HTTP to the three collaborator endpoints.
type HTTPGateway struct {
	endpoints map[Kind]config.CollaboratorConfig
	client    *http.Client
	backoff   time.Duration
}

// NewHTTPGateway builds a gateway from per-collaborator config.
func NewHTTPGateway(cfg config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		endpoints: map[Kind]config.CollaboratorConfig{
			KindSearch: cfg.Search,
			KindVideo:  cfg.Video,
			KindSocial: cfg.Social,
		},
		client:  &http.Client{},
		backoff: 300 * time.Millisecond,
	}
}

// Dispatch posts the task to its collaborator endpoint with bounded retry
// and exponential backoff.
func (g *HTTPGateway) Dispatch(ctx context.Context, task Task) (Response, error) {
	ep, ok := g.endpoints[task.Kind]
	if !ok {
		return Response{}, fmt.Errorf("unknown collaborator kind %q", task.Kind)
	}
	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return Response{}, err
	}

	var lastErr error
	tries := ep.MaxRetries + 1
	for attempt := 0; attempt < tries; attempt++ {
		resp, err := g.post(ctx, ep, timeout, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < tries-1 {
			select {
			case <-time.After(g.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return Response{}, ctx.Err()
			}
		}
	}
	return Response{}, lastErr
}

func (g *HTTPGateway) post(ctx context.Context, ep config.CollaboratorConfig, timeout time.Duration, payload []byte) (Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, ep.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if ep.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+ep.APIKey)
	}

	httpResp, err := g.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && !netErr.Timeout() {
			return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, err
		}
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return Response{}, fmt.Errorf("collaborator %s: %s", httpResp.Status, string(b))
	}

	var out Response
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding collaborator response: %w", err)
	}
	return out, nil
}
