package research

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/budget"
	"github.com/mohammad-safakhou/daybrief/internal/dedup"
	"github.com/mohammad-safakhou/daybrief/internal/fetch"
	"github.com/mohammad-safakhou/daybrief/internal/gateway"
	"github.com/mohammad-safakhou/daybrief/internal/history"
	"github.com/mohammad-safakhou/daybrief/internal/report"
	"github.com/mohammad-safakhou/daybrief/internal/telemetry"
	"github.com/mohammad-safakhou/daybrief/internal/verify"
)

// URLChecker is the liveness-check surface the controller needs.
type URLChecker interface {
	Check(ctx context.Context, urls []string) map[string]bool
}

// PageFetcher is the optional enrichment surface.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
}

// Params wires a controller together.
type Params struct {
	Research  config.ResearchConfig
	Budget    budget.Config
	Threshold float64
	Gateway   gateway.Gateway
	Checker   URLChecker
	History   history.Store
	Fetcher   PageFetcher        // nil disables enrichment
	Metrics   *telemetry.Metrics // nil disables metrics
	Logger    *log.Logger
	Now       func() time.Time
}

// Controller drives one research pass: planning, dispatch, pacing,
// verification and aggregation. It runs as a single sequential control
// goroutine; one dispatch is fully resolved before the next decision.
type Controller struct {
	research  config.ResearchConfig
	budget    budget.Config
	threshold float64
	gateway   gateway.Gateway
	checker   URLChecker
	history   history.Store
	fetcher   PageFetcher
	metrics   *telemetry.Metrics
	logger    *log.Logger
	now       func() time.Time
}

// New validates params and builds a controller.
func New(p Params) (*Controller, error) {
	if p.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if p.Checker == nil {
		return nil, errors.New("url checker is required")
	}
	if p.History == nil {
		return nil, errors.New("history store is required")
	}
	if err := p.Budget.Validate(); err != nil {
		return nil, fmt.Errorf("budget config: %w", err)
	}
	if p.Research.MaxAttempts <= 0 {
		p.Research.MaxAttempts = 3
	}
	if p.Threshold <= 0 {
		p.Threshold = 0.8
	}
	if p.Logger == nil {
		p.Logger = log.New(os.Stderr, "[CTRL] ", log.LstdFlags)
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Controller{
		research:  p.Research,
		budget:    p.Budget,
		threshold: p.Threshold,
		gateway:   p.Gateway,
		checker:   p.Checker,
		history:   p.History,
		fetcher:   p.Fetcher,
		metrics:   p.Metrics,
		logger:    p.Logger,
		now:       p.Now,
	}, nil
}

// Run executes one full research pass and returns the final report. Only
// an unobtainable current date or total gateway unavailability aborts; any
// failure inside a single topic is absorbed.
func (c *Controller) Run(ctx context.Context) (report.Report, error) {
	start := time.Now()
	date := c.now()
	if date.IsZero() {
		return report.Report{}, errors.New("cannot determine current date")
	}

	run := &Run{
		ID:     uuid.NewString(),
		Date:   date,
		Budget: budget.NewMonitor(c.budget),
		Notes:  NewNotes(c.now),
	}
	c.logger.Printf("run %s starting for %s", run.ID, date.Format("2006-01-02"))

	// INIT: history load fails soft, never fatal
	prev, found, err := c.history.LoadPrevious(ctx)
	if err != nil {
		c.logger.Printf("history unavailable, continuing with empty history: %v", err)
		run.Notes.Add(NoteFact, "history unavailable: %v", err)
	} else if found {
		run.Previous = prev
		run.HasPrevious = true
	}

	cmp, err := dedup.NewComparator(c.threshold, run.Previous.Titles())
	if err != nil {
		return report.Report{}, fmt.Errorf("building dedup comparator: %w", err)
	}
	defer cmp.Close()

	run.Status = RunPlanning
	c.plan(run, cmp)

	run.Status = RunDispatching
	if err := c.dispatchLoop(ctx, run, cmp); err != nil {
		run.Status = RunAborted
		c.countRun("aborted", start)
		return report.Report{}, err
	}

	run.Status = RunSweeping
	c.sweep(ctx, run)

	run.Status = RunVerifying
	c.verifyFindings(ctx, run)

	run.Status = RunAggregating
	rep := c.aggregate(run, cmp)
	run.Status = RunDone

	if err := c.history.Save(ctx, rep); err != nil {
		// next run simply sees older history
		c.logger.Printf("saving report failed: %v", err)
	}
	c.countRun("completed", start)
	c.logger.Printf("run %s done: %d items, %d notes", run.ID, len(rep.News), run.Notes.Len())
	return rep, nil
}

func (c *Controller) plan(run *Run, cmp *dedup.Comparator) {
	for _, tc := range c.research.Catalogue {
		kind := gateway.KindSearch
		if tc.Collaborator == "social" {
			kind = gateway.KindSocial
		}
		t := &Topic{
			Name:     tc.Name,
			Category: tc.Category,
			Priority: tc.Priority,
			Status:   TopicPending,
			Origin:   OriginPlanned,
			Kind:     kind,
		}
		if kind == gateway.KindSearch {
			if matched, ok := cmp.Match(t.Name); ok {
				t.Status = TopicSkipped
				t.SkipReason = "covered in previous run"
				run.Notes.Add(NoteFact, "topic %q skipped up front: matches previous item %q", t.Name, matched)
			}
		}
		run.Topics = append(run.Topics, t)
	}
	for i := 0; i < c.research.DiscoveryDispatches; i++ {
		run.Topics = append(run.Topics, &Topic{
			Name:      fmt.Sprintf("discovery pass %d", i+1),
			Category:  "discovery",
			Status:    TopicPending,
			Origin:    OriginPlanned,
			Kind:      gateway.KindSearch,
			Discovery: true,
		})
	}
}

func (c *Controller) dispatchLoop(ctx context.Context, run *Run, cmp *dedup.Comparator) error {
	dispatches := 0
	gatewayCalls := 0
	unavailable := 0
	succeeded := 0

	for {
		if run.Budget.ResearchExhausted() {
			c.skipRemaining(run, "input budget exhausted")
			break
		}
		topic := run.NextPending()
		if topic == nil {
			break
		}
		_ = topic.Advance(TopicInProgress)

		attempts := c.research.MaxAttempts
		if run.Degraded {
			attempts = 1
		}

		adequate := false
		outOfBudget := false
		for attempt := 1; attempt <= attempts; attempt++ {
			if run.Budget.ResearchExhausted() {
				outOfBudget = true
				break
			}
			task := c.buildTask(topic, run.Date, attempt)
			resp, err := c.gateway.Dispatch(ctx, task)
			gatewayCalls++
			dispatches++
			c.recordDispatch(task.Kind, run)
			_ = run.Budget.Charge(run.Budget.DispatchCost() + resp.Size())

			if err != nil {
				if errors.Is(err, gateway.ErrUnavailable) {
					unavailable++
				}
				c.logger.Printf("dispatch %q attempt %d failed: %v", topic.Name, attempt, err)
			} else {
				succeeded++
			}
			// a timeout or error is treated identically to an empty result
			if err != nil || resp.Empty() {
				if attempt < attempts && c.metrics != nil {
					c.metrics.Retries.Inc()
				}
				continue
			}
			c.absorb(ctx, run, cmp, topic, resp)
			adequate = true
			break
		}

		if adequate {
			_ = topic.Advance(TopicDone)
		} else if !topic.Terminal() {
			_ = topic.Advance(TopicSkipped)
			topic.SkipReason = fmt.Sprintf("no adequate result after %d attempts", attempts)
			if outOfBudget {
				topic.SkipReason = "input budget exhausted"
			}
			run.Notes.Add(NoteFollowUp, "topic %q skipped: %s", topic.Name, topic.SkipReason)
		}

		if run.Budget.ResearchExhausted() {
			c.skipRemaining(run, "input budget exhausted")
			break
		}
		if !run.Degraded && c.research.PacingInterval > 0 && dispatches%c.research.PacingInterval == 0 {
			if run.Budget.Degraded(run.CompletionRatio()) {
				run.Degraded = true
				run.Notes.Add(NoteFact, "degraded pacing engaged: usage outpacing completion")
				c.logger.Printf("degraded pacing engaged at %d dispatches", dispatches)
			}
		}
	}

	if gatewayCalls > 0 && succeeded == 0 && unavailable == gatewayCalls {
		return fmt.Errorf("run aborted, all %d dispatches failed: %w", gatewayCalls, gateway.ErrUnavailable)
	}
	return nil
}

func (c *Controller) buildTask(topic *Topic, date time.Time, attempt int) gateway.Task {
	var objective string
	switch {
	case topic.Discovery:
		objective = discoveryObjective(date, attempt)
	case topic.Kind == gateway.KindSocial:
		objective = socialObjective(topic.Category, date)
	default:
		objective = searchObjective(topic, date, attempt)
	}
	return gateway.Task{Objective: objective, Kind: topic.Kind, Attempt: attempt}
}

// absorb turns an adequate response into findings and discovered topics.
func (c *Controller) absorb(ctx context.Context, run *Run, cmp *dedup.Comparator, topic *Topic, resp gateway.Response) {
	if topic.Discovery {
		for _, res := range resp.Results {
			title := strings.TrimSpace(res.Title)
			if title == "" {
				continue
			}
			c.enqueueDiscovered(run, cmp, title, topic.Category)
		}
		return
	}

	social := topic.Kind == gateway.KindSocial
	for _, res := range resp.Results {
		title := strings.TrimSpace(res.Title)
		if title == "" {
			title = topic.Name
		}
		sources := make([]report.Source, 0, len(res.Sources))
		for _, src := range res.Sources {
			if verify.Malformed(src.URL) {
				run.Notes.Add(NoteURL, "discarded malformed url %q from %q", src.URL, title)
				continue
			}
			sources = append(sources, src)
		}

		if len(sources) == 0 && !social {
			// a sourceless non-social result is a lead, not a finding
			if !c.enqueueDiscovered(run, cmp, title, topic.Category) {
				run.Notes.Add(NoteFollowUp, "lead %q dropped: no usable sources and discovery cap reached", title)
			}
			continue
		}

		f := &Finding{
			ID:       uuid.NewString(),
			Title:    title,
			Body:     strings.TrimSpace(res.Summary),
			Sources:  sources,
			Kind:     topic.Kind,
			Topic:    topic.Name,
			Verified: make(map[string]bool),
			Trust:    TrustVerified,
		}
		if social {
			f.Trust = TrustUnverified
		}
		c.enrich(ctx, run, topic, f)
		run.Findings = append(run.Findings, f)
	}
}

// enrich pulls full page content for a search finding's first source. A
// fetch failure queues the finding for the video cross-check pass.
func (c *Controller) enrich(ctx context.Context, run *Run, topic *Topic, f *Finding) {
	if c.fetcher == nil || run.Degraded || f.Kind != gateway.KindSearch || len(f.Sources) == 0 {
		return
	}
	if run.Budget.ResearchExhausted() {
		return
	}
	url := f.Sources[0].URL
	res, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		f.FetchFailed = true
		topic.NeedsEnrichment = true
		run.Notes.Add(NoteFollowUp, "page fetch failed for %q, queued for video cross-check", url)
		return
	}
	_ = run.Budget.Charge(int64(len(res.Text)))
	if len(res.Text) > len(f.Body) {
		f.Body = res.Text
	}
}

func (c *Controller) enqueueDiscovered(run *Run, cmp *dedup.Comparator, name, category string) bool {
	for _, t := range run.Topics {
		if dedup.Similarity(t.Name, name) >= c.threshold {
			return true // already queued
		}
	}
	if _, ok := cmp.Match(name); ok {
		return true // already covered by the previous run
	}
	if run.DiscoveredCount() >= c.research.DiscoveryCap {
		return false
	}
	run.Topics = append(run.Topics, &Topic{
		Name:     name,
		Category: category,
		Status:   TopicPending,
		Origin:   OriginDiscovered,
		Kind:     gateway.KindSearch,
	})
	run.Notes.Add(NoteFact, "discovered topic %q", name)
	return true
}

func (c *Controller) skipRemaining(run *Run, reason string) {
	for _, t := range run.Topics {
		if t.Terminal() {
			continue
		}
		_ = t.Advance(TopicSkipped)
		t.SkipReason = reason
		run.Notes.Add(NoteFollowUp, "topic %q skipped: %s", t.Name, reason)
	}
}

func (c *Controller) recordDispatch(kind gateway.Kind, run *Run) {
	if c.metrics == nil {
		return
	}
	c.metrics.Dispatches.WithLabelValues(string(kind)).Inc()
	_, _, ratio := run.Budget.Usage()
	c.metrics.BudgetRatio.Set(ratio)
}

func (c *Controller) countRun(status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Runs.WithLabelValues(status).Inc()
	c.metrics.RunDuration.Observe(time.Since(start).Seconds())
}
