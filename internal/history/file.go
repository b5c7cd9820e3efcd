package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mohammad-safakhou/daybrief/internal/report"
)

const reportFilePrefix = "report_"

// FileStore keeps one JSON report per day under a data directory, named
// report_YYYYMMDD.json. LoadPrevious picks the newest by date.
type FileStore struct {
	dir    string
	logger *log.Logger
}

// NewFileStore ensures the data directory exists. A nil logger gets the
// default logger.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) LoadPrevious(ctx context.Context) (rep report.Report, found bool, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return report.Report{}, false, fmt.Errorf("reading history dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, reportFilePrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return report.Report{}, false, nil
	}
	// date-stamped names sort chronologically
	sort.Strings(names)
	latest := filepath.Join(s.dir, names[len(names)-1])
	data, err := os.ReadFile(latest)
	if err != nil {
		return report.Report{}, false, fmt.Errorf("reading %s: %w", latest, err)
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return report.Report{}, false, fmt.Errorf("parsing %s: %w", latest, err)
	}
	return rep, true, nil
}

func (s *FileStore) Save(ctx context.Context, rep report.Report) error {
	name := fmt.Sprintf("%s%s.json", reportFilePrefix, rep.Date.Format("20060102"))
	path := filepath.Join(s.dir, name)
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.logger.Printf("[HISTORY] saved %s", path)
	return nil
}

func (s *FileStore) Close() error { return nil }
