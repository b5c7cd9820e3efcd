package history

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies database migrations from the given directory. An
// already-current schema is not an error.
// dir example: file://migrations
func Migrate(dir string, dsn string, direction string, steps int) error {
	if dir == "" {
		dir = "file://migrations"
	}
	m, err := migrate.New(dir, dsn)
	if err != nil {
		return err
	}
	var run func() error
	switch direction {
	case "up":
		run = m.Up
		if steps > 0 {
			run = func() error { return m.Steps(steps) }
		}
	case "down":
		run = m.Down
		if steps > 0 {
			run = func() error { return m.Steps(-steps) }
		}
	default:
		return fmt.Errorf("unknown direction: %s", direction)
	}
	if err := run(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
