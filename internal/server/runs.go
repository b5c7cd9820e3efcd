package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/daybrief/internal/history"
	"github.com/mohammad-safakhou/daybrief/internal/research"
)

// RunsHandler triggers research runs and serves the latest report.
type RunsHandler struct {
	Ctrl   *research.Controller
	Store  history.Store
	Logger *log.Logger

	mu      sync.Mutex
	running bool
}

func (h *RunsHandler) Register(g *echo.Group, secret []byte) {
	g.POST("/runs", withAuth(h.trigger, secret))
	g.GET("/report/latest", withAuth(h.latest, secret))
}

// trigger kicks off a run in the background. Only one run may be active;
// overlap returns 409 rather than queuing.
func (h *RunsHandler) trigger(c echo.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return echo.NewHTTPError(http.StatusConflict, "a run is already in progress")
	}
	h.running = true
	h.mu.Unlock()
	if h.Ctrl == nil {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
		return echo.NewHTTPError(http.StatusServiceUnavailable, "controller not configured")
	}

	go func() {
		defer func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
		}()
		rep, err := h.Ctrl.Run(context.Background())
		if err != nil {
			h.Logger.Printf("run failed: %v", err)
			return
		}
		h.Logger.Printf("run finished with %d items", len(rep.News))
	}()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *RunsHandler) latest(c echo.Context) error {
	rep, found, err := h.Store.LoadPrevious(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "no report available")
	}
	if c.QueryParam("format") == "markdown" {
		return c.String(http.StatusOK, rep.Markdown())
	}
	return c.JSON(http.StatusOK, rep)
}
