package report

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/daybrief/internal/dedup"
)

// UnverifiedMarker is carried in the body text of social-sourced items so
// they stay visually distinguishable without being removed.
const UnverifiedMarker = "[unverified]"

const defaultMaxBodyWords = 1000

// Candidate is a surviving finding handed to the aggregator after
// verification and cross-run dedup.
type Candidate struct {
	Title      string
	Body       string
	Sources    []Source
	Unverified bool
}

// Aggregator merges candidates that describe the same underlying event and
// assembles the final report.
type Aggregator struct {
	threshold    float64
	minItems     int
	maxBodyWords int
	logger       *log.Logger
}

// NewAggregator builds an aggregator. threshold is the same similarity
// cutoff used for cross-run dedup; minItems controls the slow-day notice.
func NewAggregator(threshold float64, minItems int, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		threshold:    threshold,
		minItems:     minItems,
		maxBodyWords: defaultMaxBodyWords,
		logger:       logger,
	}
}

type merged struct {
	title      string
	body       string
	sources    []Source
	unverified bool
}

// Aggregate merges same-event candidates (source lists unioned, longest
// body kept), truncates bodies and emits the report. runNotes become the
// run-level comment, with a slow-day notice appended when the digest comes
// up short.
func (a *Aggregator) Aggregate(date time.Time, candidates []Candidate, runNotes []string) Report {
	var groups []*merged
	for _, cand := range candidates {
		if strings.TrimSpace(cand.Title) == "" {
			continue
		}
		var home *merged
		for _, g := range groups {
			if dedup.Similarity(g.title, cand.Title) >= a.threshold {
				home = g
				break
			}
		}
		if home == nil {
			groups = append(groups, &merged{
				title:      cand.Title,
				body:       cand.Body,
				sources:    append([]Source(nil), cand.Sources...),
				unverified: cand.Unverified,
			})
			continue
		}
		a.logger.Printf("[AGG] merging %q into %q", cand.Title, home.title)
		// keep the most complete body text rather than concatenating
		if len(cand.Body) > len(home.body) {
			home.body = cand.Body
		}
		home.sources = unionSources(home.sources, cand.Sources)
		home.unverified = home.unverified || cand.Unverified
	}

	news := make([]Item, 0, len(groups))
	for _, g := range groups {
		body := truncateWords(g.body, a.maxBodyWords)
		if g.unverified && !strings.Contains(body, UnverifiedMarker) {
			body = UnverifiedMarker + " " + body
		}
		urls := make([]string, 0, len(g.sources))
		for _, src := range g.sources {
			urls = append(urls, src.URL)
		}
		news = append(news, Item{Title: g.title, Body: body, Sources: urls})
	}

	comments := append([]string(nil), runNotes...)
	if len(news) < a.minItems {
		comments = append(comments, fmt.Sprintf("slow news day: %d items collected, %d expected", len(news), a.minItems))
	}

	return Report{
		Date:     date,
		Comments: strings.Join(comments, " "),
		News:     news,
	}
}

func unionSources(existing, extra []Source) []Source {
	seen := make(map[string]struct{}, len(existing))
	for _, src := range existing {
		seen[strings.TrimSpace(src.URL)] = struct{}{}
	}
	for _, src := range extra {
		key := strings.TrimSpace(src.URL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, src)
	}
	return existing
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:max], " ")
}
