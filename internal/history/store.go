// Package history persists each run's final report. The previous report is
// the only cross-run state: it is read once at run start for dedup and
// written once when the run finishes.
package history

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

// Store reads the previous run's report and saves the current one.
type Store interface {
	// LoadPrevious returns the most recent saved report. found is false
	// when no history exists yet; that is not an error.
	LoadPrevious(ctx context.Context) (rep report.Report, found bool, err error)
	Save(ctx context.Context, rep report.Report) error
	Close() error
}

// Open selects a backend from config.
func Open(cfg config.StorageConfig, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.File.DataDir, logger)
	case "postgres":
		return NewPostgresStore(cfg.Postgres)
	case "redis":
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
