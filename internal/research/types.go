package research

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/daybrief/internal/budget"
	"github.com/mohammad-safakhou/daybrief/internal/gateway"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

// TopicStatus moves forward only: pending -> in_progress -> done|skipped.
type TopicStatus string

const (
	TopicPending    TopicStatus = "pending"
	TopicInProgress TopicStatus = "in_progress"
	TopicDone       TopicStatus = "done"
	TopicSkipped    TopicStatus = "skipped"
)

// TopicOrigin distinguishes catalogue entries from leads surfaced mid-run.
type TopicOrigin string

const (
	OriginPlanned    TopicOrigin = "planned"
	OriginDiscovered TopicOrigin = "discovered"
)

// Topic is one unit of planned or discovered work.
type Topic struct {
	Name     string
	Category string
	Priority int
	Status   TopicStatus
	Origin   TopicOrigin
	Kind     gateway.Kind

	// Discovery marks open-ended dispatches whose only purpose is to
	// surface entities missing from the catalogue.
	Discovery bool
	// NeedsEnrichment queues the topic for the video cross-check pass.
	NeedsEnrichment bool
	SkipReason      string
}

var topicRank = map[TopicStatus]int{
	TopicPending:    0,
	TopicInProgress: 1,
	TopicDone:       2,
	TopicSkipped:    2,
}

// Advance moves the topic's status forward, rejecting backward transitions.
func (t *Topic) Advance(to TopicStatus) error {
	if topicRank[to] <= topicRank[t.Status] && to != t.Status {
		return fmt.Errorf("topic %q cannot move %s -> %s", t.Name, t.Status, to)
	}
	if t.Status == TopicDone || t.Status == TopicSkipped {
		if t.Status != to {
			return fmt.Errorf("topic %q already terminal (%s)", t.Name, t.Status)
		}
		return nil
	}
	t.Status = to
	return nil
}

// Terminal reports whether the topic needs no further dispatches.
func (t *Topic) Terminal() bool {
	return t.Status == TopicDone || t.Status == TopicSkipped
}

// Trust tags a finding's verification posture. Unverified is only ever
// carried by social-sourced findings.
type Trust string

const (
	TrustVerified   Trust = "verified"
	TrustUnverified Trust = "unverified"
)

// Finding is a candidate report item before dedup and aggregation.
type Finding struct {
	ID       string
	Title    string
	Body     string
	Sources  []report.Source
	Kind     gateway.Kind
	Topic    string
	Verified map[string]bool
	Trust    Trust

	// FetchFailed marks findings whose page enrichment failed, making
	// them candidates for the video cross-check pass.
	FetchFailed bool
}

// Social reports whether this finding came from the social collaborator and
// therefore bypasses verification and corroboration checks.
func (f *Finding) Social() bool { return f.Kind == gateway.KindSocial }

// RunStatus traces which stage of the pass the controller is in.
type RunStatus string

const (
	RunPlanning    RunStatus = "planning"
	RunDispatching RunStatus = "dispatching"
	RunSweeping    RunStatus = "sweeping"
	RunVerifying   RunStatus = "verifying"
	RunAggregating RunStatus = "aggregating"
	RunDone        RunStatus = "done"
	RunAborted     RunStatus = "aborted"
)

// Run is the per-run context owned by the controller. It exists for the
// duration of one pass and is discarded after the report is emitted.
type Run struct {
	ID          string
	Date        time.Time
	Status      RunStatus
	Budget      *budget.Monitor
	Topics      []*Topic
	Findings    []*Finding
	Notes       *Notes
	Previous    report.Report
	HasPrevious bool
	Degraded    bool
}

// CompletionRatio is the share of topics that reached a terminal status.
func (r *Run) CompletionRatio() float64 {
	if len(r.Topics) == 0 {
		return 0
	}
	done := 0
	for _, t := range r.Topics {
		if t.Terminal() {
			done++
		}
	}
	return float64(done) / float64(len(r.Topics))
}

// NextPending returns the next topic to dispatch: catalogue order first,
// then discovered topics in arrival order.
func (r *Run) NextPending() *Topic {
	for _, t := range r.Topics {
		if t.Origin == OriginPlanned && t.Status == TopicPending {
			return t
		}
	}
	for _, t := range r.Topics {
		if t.Origin == OriginDiscovered && t.Status == TopicPending {
			return t
		}
	}
	return nil
}

// DiscoveredCount counts topics appended mid-run, for cap enforcement.
func (r *Run) DiscoveredCount() int {
	n := 0
	for _, t := range r.Topics {
		if t.Origin == OriginDiscovered {
			n++
		}
	}
	return n
}
