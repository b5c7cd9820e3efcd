package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/history"
	"github.com/mohammad-safakhou/daybrief/internal/research"
)

// Server exposes the digest controller over HTTP: trigger a run, read the
// latest report, health and metrics.
type Server struct {
	cfg    *config.Config
	ctrl   *research.Controller
	store  history.Store
	logger *log.Logger
}

func New(cfg *config.Config, ctrl *research.Controller, store history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{cfg: cfg, ctrl: ctrl, store: store, logger: logger}
}

// Handler builds the routed echo instance. Split from Run so tests can
// drive it through httptest without binding a port.
func (s *Server) Handler() (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	secret := s.cfg.Server.JWTSecret
	if secret == "" {
		return nil, fmt.Errorf("jwt secret not configured (server.jwt_secret)")
	}
	auth := &AuthHandler{
		Secret:       []byte(secret),
		User:         s.cfg.Server.AdminUser,
		PasswordHash: s.cfg.Server.AdminPasswordHash,
	}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	rh := &RunsHandler{Ctrl: s.ctrl, Store: s.store, Logger: s.logger}
	rh.Register(api, auth.Secret)
	return e, nil
}

// Run starts the HTTP listener and blocks.
func (s *Server) Run() error {
	e, err := s.Handler()
	if err != nil {
		return err
	}
	addr := s.cfg.Server.Address
	if addr == "" {
		addr = ":10001"
	}
	s.logger.Printf("listening on %s", addr)
	return e.Start(addr)
}
