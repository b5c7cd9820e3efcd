package history_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/history"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

func startPostgres(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "daybrief",
			"POSTGRES_PASSWORD": "daybrief",
			"POSTGRES_DB":       "daybrief",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(1).WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		_ = pg.Terminate(ctx)
		t.Fatalf("failed to get mapped port: %v", err)
	}
	host, err := pg.Host(ctx)
	if err != nil {
		_ = pg.Terminate(ctx)
		t.Fatalf("failed to get host: %v", err)
	}
	dsn := fmt.Sprintf("postgres://daybrief:daybrief@%s:%s/daybrief?sslmode=disable", host, port.Port())
	return pg, dsn
}

func findMigrationsDir(t *testing.T) string {
	t.Helper()
	cwd, _ := os.Getwd()
	for i := 0; i < 6; i++ {
		candidate := filepath.Join(cwd, "migrations")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return "file://" + candidate
		}
		cwd = filepath.Dir(cwd)
	}
	t.Fatalf("migrations directory not found")
	return ""
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg, dsn := startPostgres(t, ctx)
	defer func() { _ = pg.Terminate(ctx) }()

	if err := history.Migrate(findMigrationsDir(t), dsn, "up", 0); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	// re-running against an up-to-date schema must succeed
	if err := history.Migrate(findMigrationsDir(t), dsn, "up", 0); err != nil {
		t.Fatalf("migrating current schema: %v", err)
	}

	store, err := history.NewPostgresStore(config.PostgresConfig{URL: dsn})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	if _, found, err := store.LoadPrevious(ctx); err != nil || found {
		t.Fatalf("fresh db should yield not found, got found=%v err=%v", found, err)
	}

	rep := report.Report{
		Date:     time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC),
		Comments: "integration",
		News:     []report.Item{{Title: "stored story", Body: "b", Sources: []string{"https://example.com"}}},
	}
	if err := store.Save(ctx, rep); err != nil {
		t.Fatalf("saving: %v", err)
	}
	got, found, err := store.LoadPrevious(ctx)
	if err != nil || !found {
		t.Fatalf("expected report, got found=%v err=%v", found, err)
	}
	if got.News[0].Title != "stored story" {
		t.Fatalf("unexpected report: %+v", got)
	}
}
