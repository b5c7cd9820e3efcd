package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

type fakeStore struct {
	rep   report.Report
	found bool
	err   error
}

func (f *fakeStore) LoadPrevious(ctx context.Context) (report.Report, bool, error) {
	return f.rep, f.found, f.err
}
func (f *fakeStore) Save(ctx context.Context, rep report.Report) error { return nil }
func (f *fakeStore) Close() error                                      { return nil }

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestLoginIssuesToken(t *testing.T) {
	e := echo.New()
	auth := &AuthHandler{
		Secret:       []byte("test-secret"),
		User:         "admin",
		PasswordHash: mustHash(t, "correct horse"),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"correct horse"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := auth.login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatalf("expected a token in the response")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := echo.New()
	auth := &AuthHandler{
		Secret:       []byte("test-secret"),
		User:         "admin",
		PasswordHash: mustHash(t, "correct horse"),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := auth.login(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestWithAuthAcceptsSignedToken(t *testing.T) {
	e := echo.New()
	secret := []byte("test-secret")
	signed, err := signJWT("admin", secret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	handler := withAuth(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	}, secret)

	req := httptest.NewRequest(http.MethodGet, "/api/report/latest", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Body.String() != "admin" {
		t.Fatalf("expected subject passthrough, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/report/latest", nil)
	rec = httptest.NewRecorder()
	err = handler(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", err)
	}
}

func TestLatestReport(t *testing.T) {
	e := echo.New()
	h := &RunsHandler{
		Store: &fakeStore{
			rep: report.Report{
				Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				News: []report.Item{{Title: "story", Body: "body", Sources: []string{"https://example.com/a"}}},
			},
			found: true,
		},
		Logger: log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/report/latest", nil)
	rec := httptest.NewRecorder()
	if err := h.latest(e.NewContext(req, rec)); err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var rep report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rep.News) != 1 || rep.News[0].Title != "story" {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestLatestReportNotFound(t *testing.T) {
	e := echo.New()
	h := &RunsHandler{Store: &fakeStore{}, Logger: log.New(log.Writer(), "", 0)}

	req := httptest.NewRequest(http.MethodGet, "/api/report/latest", nil)
	rec := httptest.NewRecorder()
	err := h.latest(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestTriggerRejectsOverlap(t *testing.T) {
	e := echo.New()
	h := &RunsHandler{Logger: log.New(log.Writer(), "", 0)}
	h.running = true

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	rec := httptest.NewRecorder()
	err := h.trigger(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409 on overlap, got %v", err)
	}
}

func TestHandlerRequiresJWTSecret(t *testing.T) {
	cfg := &config.Config{}
	s := New(cfg, nil, &fakeStore{}, nil)
	if _, err := s.Handler(); err == nil {
		t.Fatalf("expected error for missing jwt secret")
	}
}
