package dispatcher

import (
	"sync"
	"time"

	"github.com/blockpad/blockpad/internal/dispatcher/handler"
)

// ActionStats holds dispatch statistics for a single action.
type ActionStats struct {
	// Count is the number of dispatches.
	Count int64

	// Errors is the number of dispatches that ended in an error result.
	Errors int64

	// Panics is the number of recovered handler panics.
	Panics int64

	// TotalDuration is the cumulative handler execution time.
	TotalDuration time.Duration

	// MaxDuration is the longest single handler execution.
	MaxDuration time.Duration
}

// Metrics collects per-action dispatch statistics.
type Metrics struct {
	mu    sync.Mutex
	stats map[string]*ActionStats
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		stats: make(map[string]*ActionStats),
	}
}

// RecordDispatch records one dispatch of an action.
func (m *Metrics) RecordDispatch(actionName string, d time.Duration, status handler.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.statsFor(actionName)
	s.Count++
	s.TotalDuration += d
	if d > s.MaxDuration {
		s.MaxDuration = d
	}
	if status == handler.StatusError {
		s.Errors++
	}
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(actionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsFor(actionName).Panics++
}

// Stats returns a copy of the statistics for an action.
func (m *Metrics) Stats(actionName string) ActionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stats[actionName]; ok {
		return *s
	}
	return ActionStats{}
}

// All returns a copy of all collected statistics.
func (m *Metrics) All() map[string]ActionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]ActionStats, len(m.stats))
	for name, s := range m.stats {
		result[name] = *s
	}
	return result
}

// statsFor returns the stats entry for an action, creating it if needed.
// Caller must hold the lock.
func (m *Metrics) statsFor(actionName string) *ActionStats {
	s, ok := m.stats[actionName]
	if !ok {
		s = &ActionStats{}
		m.stats[actionName] = s
	}
	return s
}
