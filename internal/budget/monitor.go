package budget

import (
	"fmt"
	"sync"
	"time"
)

// Monitor tracks consumption against the run ceiling. Consumed units only
// ever grow; a fresh Monitor is created at the start of every run.
type Monitor struct {
	config    Config
	consumed  int64
	startTime time.Time
	mu        sync.Mutex
}

// NewMonitor starts tracking usage against the provided config.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{
		config:    cfg,
		startTime: time.Now(),
	}
}

// Charge records consumed units, returning ErrExhausted once the research
// portion of the ceiling is gone. The charge is recorded either way.
func (m *Monitor) Charge(units int64) error {
	if units < 0 {
		units = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumed += units
	if m.consumed > m.config.ResearchCeiling() {
		return ErrExhausted{
			Usage: fmt.Sprintf("%d units", m.consumed),
			Limit: fmt.Sprintf("%d units (of %d ceiling)", m.config.ResearchCeiling(), m.config.Ceiling),
		}
	}
	return nil
}

// Usage returns the consumed units, the ceiling and the usage ratio.
func (m *Monitor) Usage() (consumed, ceiling int64, ratio float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumed, m.config.Ceiling, float64(m.consumed) / float64(m.config.Ceiling)
}

// Remaining reports the unspent portion of the full ceiling.
func (m *Monitor) Remaining() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rem := m.config.Ceiling - m.consumed; rem > 0 {
		return rem
	}
	return 0
}

// ResearchExhausted reports whether remaining budget has fallen into the
// reserved-output allowance, forcing the run toward aggregation.
func (m *Monitor) ResearchExhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumed >= m.config.ResearchCeiling()
}

// Degraded reports whether the usage ratio has outpaced the completion
// ratio by more than the configured margin.
func (m *Monitor) Degraded(completionRatio float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ratio := float64(m.consumed) / float64(m.config.Ceiling)
	return ratio-completionRatio > m.config.DegradeMargin
}

// DispatchCost returns the fixed per-dispatch charge.
func (m *Monitor) DispatchCost() int64 {
	return m.config.DispatchCost
}

// Elapsed reports how long this monitor has been live.
func (m *Monitor) Elapsed() time.Duration {
	return time.Since(m.startTime)
}
