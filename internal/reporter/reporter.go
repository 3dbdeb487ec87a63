package reporter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-service/internal/metrics"
)

const defaultInterval = time.Minute

// BoardSource supplies the ranked summary board.
type BoardSource interface {
	BoardDescending() []domaingames.Result
}

// Reporter logs the summary board on an interval and feeds the board gauges.
type Reporter struct {
	source   BoardSource
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the reporter's recent activity.
type Status struct {
	Cycles       int
	LastRun      time.Time
	LastDuration time.Duration
	ActiveGames  int
	Leader       *domaingames.Result
}

// New constructs a Reporter with sane defaults.
func New(source BoardSource, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reporter{
		source:   source,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins reporting until the context is cancelled or Stop is called.
func (r *Reporter) Start(ctx context.Context) {
	r.startMu.Lock()
	if r.started {
		r.startMu.Unlock()
		return
	}
	r.started = true
	r.ticker = time.NewTicker(r.interval)
	r.startMu.Unlock()

	go func() {
		defer close(r.stopped)
		logging.Info(r.logger, "reporter started", slog.Int64(logging.FieldDurationMS, r.interval.Milliseconds()))
		r.reportOnce()

		for {
			select {
			case <-ctx.Done():
				r.ticker.Stop()
				logging.Info(r.logger, "reporter stopped")
				return
			case <-r.done:
				r.ticker.Stop()
				logging.Info(r.logger, "reporter stopped")
				return
			case <-r.ticker.C:
				r.reportOnce()
			}
		}
	}()
}

// Stop halts the reporting loop and waits for it to exit or ctx to expire.
func (r *Reporter) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		close(r.done)
	})

	r.startMu.Lock()
	started := r.started
	r.startMu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-r.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) reportOnce() {
	start := r.now()
	board := r.source.BoardDescending()

	goals := 0
	for _, res := range board {
		goals += res.Total()
	}
	elapsed := r.now().Sub(start)
	r.metrics.RecordBoard(len(board), goals)
	r.metrics.RecordReporterCycle(elapsed)

	var leader *domaingames.Result
	if len(board) > 0 {
		top := board[0]
		leader = &top
		logging.Info(r.logger, "scoreboard summary",
			logging.FieldCount, len(board),
			logging.FieldHomeTeam, top.HomeTeam,
			logging.FieldAwayTeam, top.AwayTeam,
			"leader", top.String(),
		)
	} else {
		logging.Debug(r.logger, "scoreboard summary", logging.FieldCount, 0)
	}

	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.Cycles++
	r.status.LastRun = start
	r.status.LastDuration = elapsed
	r.status.ActiveGames = len(board)
	r.status.Leader = leader
}

// Status returns a snapshot of the reporter's recent activity.
func (r *Reporter) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}
