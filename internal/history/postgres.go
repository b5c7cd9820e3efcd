package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

// PostgresStore keeps one report row per run date in the reports table.
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore opens and pings the database.
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) LoadPrevious(ctx context.Context) (report.Report, bool, error) {
	var payload []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT payload FROM reports ORDER BY run_date DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, fmt.Errorf("loading previous report: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return report.Report{}, false, fmt.Errorf("parsing previous report: %w", err)
	}
	return rep, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, rep report.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO reports (run_date, payload) VALUES ($1, $2)
		 ON CONFLICT (run_date) DO UPDATE SET payload = EXCLUDED.payload`,
		rep.Date.Format("2006-01-02"), payload)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }
