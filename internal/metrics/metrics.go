package metrics

import (
	"sync"
	"time"
)

type operationStats struct {
	calls       int
	errors      int
	conflicts   int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about scoreboard operations
// and mirrors them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu          sync.Mutex
	stats       map[string]*operationStats
	activeGames int64
	totalGoals  int64
	boardSource func() (activeGames, totalGoals int)
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*operationStats),
		otel:  otel,
	}
}

// RecordOperation counts a call to op. kind is the error classification and
// is ignored when err is nil; conflict marks a retryable compare-and-swap failure.
func (r *Recorder) RecordOperation(op string, duration time.Duration, err error, kind string, conflict bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(op)
	stats.calls++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
		if conflict {
			stats.conflicts++
		}
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordOperation(op, duration, err, kind, conflict)
	}
}

// RecordBoard stores the latest board totals for the gauges.
func (r *Recorder) RecordBoard(activeGames, totalGoals int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeGames = int64(activeGames)
	r.totalGoals = int64(totalGoals)
}

// WatchBoard makes Board read live totals from source instead of the last
// recorded values.
func (r *Recorder) WatchBoard(source func() (activeGames, totalGoals int)) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boardSource = source
}

// RecordReporterCycle tracks reporter cycles.
func (r *Recorder) RecordReporterCycle(duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordReporter(duration)
}

// OperationCalls returns the total calls recorded for an operation.
func (r *Recorder) OperationCalls(op string) int {
	return r.Snapshot(op).Calls
}

// OperationErrors returns the failed calls recorded for an operation.
func (r *Recorder) OperationErrors(op string) int {
	return r.Snapshot(op).Errors
}

// Conflicts returns the compare-and-swap conflicts recorded for an operation.
func (r *Recorder) Conflicts(op string) int {
	return r.Snapshot(op).Conflicts
}

// Board returns the active game and goal totals, live when a source is
// watched and otherwise the last recorded values.
func (r *Recorder) Board() (activeGames, totalGoals int64) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	source := r.boardSource
	activeGames, totalGoals = r.activeGames, r.totalGoals
	r.mu.Unlock()

	if source != nil {
		active, goals := source()
		return int64(active), int64(goals)
	}
	return activeGames, totalGoals
}

// Snapshot returns a copy of the current stats for the operation.
type Snapshot struct {
	Calls       int
	Errors      int
	Conflicts   int
	LastLatency time.Duration
}

func (r *Recorder) Snapshot(op string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[op]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:       stats.calls,
		Errors:      stats.errors,
		Conflicts:   stats.conflicts,
		LastLatency: stats.lastLatency,
	}
}

func (r *Recorder) ensureStatsLocked(op string) *operationStats {
	stats, ok := r.stats[op]
	if !ok {
		stats = &operationStats{}
		r.stats[op] = stats
	}
	return stats
}
