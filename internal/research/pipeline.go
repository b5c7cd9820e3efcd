package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/daybrief/internal/dedup"
	"github.com/mohammad-safakhou/daybrief/internal/gateway"
	"github.com/mohammad-safakhou/daybrief/internal/report"
	"github.com/mohammad-safakhou/daybrief/internal/verify"
)

// sweep runs the enrichment pass: video cross-checks for findings whose
// page fetch failed. Only entered when budget remains and pacing is sound.
func (c *Controller) sweep(ctx context.Context, run *Run) {
	if run.Degraded || run.Budget.ResearchExhausted() {
		return
	}
	for _, f := range run.Findings {
		if !f.FetchFailed || f.Kind != gateway.KindSearch {
			continue
		}
		if run.Budget.ResearchExhausted() {
			return
		}
		// target URLs are the literal ones search returned, never constructed
		task := gateway.Task{
			Objective:  videoObjective(f.Title, run.Date),
			Kind:       gateway.KindVideo,
			TargetURLs: sourceURLs(f.Sources),
		}
		resp, err := c.gateway.Dispatch(ctx, task)
		c.recordDispatch(task.Kind, run)
		_ = run.Budget.Charge(run.Budget.DispatchCost() + resp.Size())
		if err != nil || resp.Empty() {
			continue
		}

		vf := &Finding{
			ID:       uuid.NewString(),
			Title:    f.Title,
			Kind:     gateway.KindVideo,
			Topic:    f.Topic,
			Verified: make(map[string]bool),
			Trust:    TrustVerified,
		}
		for _, res := range resp.Results {
			if len(res.Summary) > len(vf.Body) {
				vf.Body = strings.TrimSpace(res.Summary)
			}
			for _, src := range res.Sources {
				if verify.Malformed(src.URL) {
					run.Notes.Add(NoteURL, "discarded malformed url %q from video cross-check", src.URL)
					continue
				}
				vf.Sources = appendSource(vf.Sources, src)
			}
		}
		// a non-social finding never ships without a source url
		if len(vf.Sources) == 0 {
			run.Notes.Add(NoteFact, "video cross-check for %q returned no sources, discarded", f.Title)
			c.countDrop("no_sources")
			continue
		}
		if vf.Body == "" {
			vf.Body = f.Body
		}
		run.Findings = append(run.Findings, vf)
		run.Notes.Add(NoteFact, "video cross-check added for %q", f.Title)
	}
}

// verifyFindings applies the per-provenance trust policy: search sources
// must pass the liveness check, video URLs carry an exemption pass, social
// findings are accepted verbatim.
func (c *Controller) verifyFindings(ctx context.Context, run *Run) {
	var urls []string
	for _, f := range run.Findings {
		if f.Kind != gateway.KindSearch {
			continue
		}
		for _, src := range f.Sources {
			urls = append(urls, src.URL)
		}
	}
	results := c.checker.Check(ctx, urls)

	var surviving []*Finding
	for _, f := range run.Findings {
		switch f.Kind {
		case gateway.KindSocial:
			surviving = append(surviving, f)
		case gateway.KindVideo:
			// platform access differs from ordinary pages; record the
			// exemption pass without a live fetch
			for _, src := range f.Sources {
				f.Verified[src.URL] = true
			}
			surviving = append(surviving, f)
		default:
			passing := make([]report.Source, 0, len(f.Sources))
			for _, src := range f.Sources {
				ok := results[src.URL]
				f.Verified[src.URL] = ok
				if ok {
					passing = append(passing, src)
				} else {
					run.Notes.Add(NoteURL, "dropped dead url %q from %q", src.URL, f.Title)
				}
			}
			if len(passing) > 0 {
				f.Sources = passing
				surviving = append(surviving, f)
				continue
			}
			// zero passing URLs: one alternate-source re-dispatch before dropping
			if c.redispatchAlternate(ctx, run, f) {
				surviving = append(surviving, f)
				continue
			}
			run.Notes.Add(NoteFact, "dropped %q: no verifiable sources", f.Title)
			c.countDrop("verification")
		}
	}
	run.Findings = surviving
}

// redispatchAlternate asks search once for different outlets covering the
// story. Returns true when replacement sources verify.
func (c *Controller) redispatchAlternate(ctx context.Context, run *Run, f *Finding) bool {
	if run.Budget.ResearchExhausted() {
		return false
	}
	task := gateway.Task{
		Objective: alternateObjective(f.Title, run.Date),
		Kind:      gateway.KindSearch,
		Attempt:   1,
	}
	resp, err := c.gateway.Dispatch(ctx, task)
	c.recordDispatch(task.Kind, run)
	_ = run.Budget.Charge(run.Budget.DispatchCost() + resp.Size())
	if err != nil || resp.Empty() {
		return false
	}

	var candidates []report.Source
	for _, res := range resp.Results {
		for _, src := range res.Sources {
			if verify.Malformed(src.URL) {
				continue
			}
			candidates = appendSource(candidates, src)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	checked := c.checker.Check(ctx, sourceURLs(candidates))
	passing := make([]report.Source, 0, len(candidates))
	for _, src := range candidates {
		ok := checked[src.URL]
		f.Verified[src.URL] = ok
		if ok {
			passing = append(passing, src)
		}
	}
	if len(passing) == 0 {
		return false
	}
	f.Sources = passing
	run.Notes.Add(NoteURL, "replaced dead sources for %q via alternate dispatch", f.Title)
	return true
}

// aggregate runs cross-run dedup and hands survivors to the aggregator.
func (c *Controller) aggregate(run *Run, cmp *dedup.Comparator) report.Report {
	suppressed := 0
	var candidates []report.Candidate
	for _, f := range run.Findings {
		if matched, ok := cmp.Match(f.Title); ok {
			suppressed++
			run.Notes.Add(NoteFact, "suppressed repeat %q (matches previous %q)", f.Title, matched)
			c.countDrop("repeat")
			continue
		}
		if c.metrics != nil {
			c.metrics.FindingsKept.Inc()
		}
		candidates = append(candidates, report.Candidate{
			Title:      f.Title,
			Body:       f.Body,
			Sources:    f.Sources,
			Unverified: f.Trust == TrustUnverified,
		})
	}

	var runNotes []string
	if run.Budget.ResearchExhausted() {
		consumed, ceiling, _ := run.Budget.Usage()
		runNotes = append(runNotes, fmt.Sprintf("input budget exhausted (%d of %d units) before all topics completed.", consumed, ceiling))
	}
	if run.Degraded {
		runNotes = append(runNotes, "degraded pacing was active: reduced retries and no enrichment.")
	}
	if skipped := skippedNames(run.Topics); len(skipped) > 0 {
		runNotes = append(runNotes, fmt.Sprintf("skipped topics: %s.", strings.Join(skipped, ", ")))
	}
	if suppressed > 0 {
		runNotes = append(runNotes, fmt.Sprintf("%d repeat items from the previous run were suppressed.", suppressed))
	}

	agg := report.NewAggregator(c.threshold, c.research.MinItems, c.logger)
	return agg.Aggregate(run.Date, candidates, runNotes)
}

func (c *Controller) countDrop(reason string) {
	if c.metrics == nil {
		return
	}
	c.metrics.FindingsDropped.WithLabelValues(reason).Inc()
}

func skippedNames(topics []*Topic) []string {
	var out []string
	for _, t := range topics {
		if t.Status == TopicSkipped && !t.Discovery {
			out = append(out, t.Name)
		}
	}
	return out
}

func sourceURLs(sources []report.Source) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.URL)
	}
	return out
}

func appendSource(list []report.Source, src report.Source) []report.Source {
	for _, have := range list {
		if have.URL == src.URL {
			return list
		}
	}
	return append(list, src)
}
