package main

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/budget"
	"github.com/mohammad-safakhou/daybrief/internal/fetch"
	"github.com/mohammad-safakhou/daybrief/internal/gateway"
	"github.com/mohammad-safakhou/daybrief/internal/history"
	"github.com/mohammad-safakhou/daybrief/internal/research"
	"github.com/mohammad-safakhou/daybrief/internal/telemetry"
	"github.com/mohammad-safakhou/daybrief/internal/verify"
)

// buildController assembles a controller and its history store from config.
// The caller owns the returned store and must Close it.
func buildController(cfg *config.Config) (*research.Controller, history.Store, error) {
	logger := log.New(log.Writer(), "[CTRL] ", log.LstdFlags)

	store, err := history.Open(cfg.Storage, log.New(log.Writer(), "[HISTORY] ", log.LstdFlags))
	if err != nil {
		return nil, nil, fmt.Errorf("opening history store: %w", err)
	}

	var fetcher research.PageFetcher
	if cfg.Fetch.Enabled {
		fetcher = fetch.New(cfg.Fetch, log.New(log.Writer(), "[FETCH] ", log.LstdFlags))
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New(prometheus.DefaultRegisterer)
	}

	ctrl, err := research.New(research.Params{
		Research: cfg.Research,
		Budget: budget.Config{
			Ceiling:          cfg.Budget.Ceiling,
			ReservedFraction: cfg.Budget.ReservedFraction,
			DegradeMargin:    cfg.Budget.DegradeMargin,
			DispatchCost:     cfg.Budget.DispatchCost,
		},
		Threshold: cfg.Dedup.Threshold,
		Gateway:   gateway.NewHTTPGateway(cfg.Gateway),
		Checker:   verify.New(nil, cfg.Verify.Timeout, cfg.Verify.Concurrency, log.New(log.Writer(), "[VERIFY] ", log.LstdFlags)),
		History:   store,
		Fetcher:   fetcher,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return ctrl, store, nil
}
