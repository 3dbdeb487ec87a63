package reporter

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-service/internal/testutil"
)

type stubSource struct {
	board  []domaingames.Result
	calls  atomic.Int32
	notify chan struct{}
}

func (s *stubSource) BoardDescending() []domaingames.Result {
	if s.calls.Add(1) == 1 && s.notify != nil {
		close(s.notify)
	}
	return s.board
}

func TestReporterRecordsBoardTotals(t *testing.T) {
	source := &stubSource{
		board: []domaingames.Result{
			testutil.SampleResult("Spain", 10, "Brazil", 2),
			testutil.SampleResult("Mexico", 0, "Canada", 5),
		},
		notify: make(chan struct{}),
	}
	rec := metrics.NewRecorder()
	logger, buf := testutil.NewBufferLogger()

	r := New(source, logger, rec, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx)
	select {
	case <-source.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial report")
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	active, goals := rec.Board()
	if active != 2 || goals != 17 {
		t.Fatalf("expected 2 games and 17 goals, got %d and %d", active, goals)
	}

	status := r.Status()
	if status.Cycles != 1 || status.ActiveGames != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Leader == nil || status.Leader.HomeTeam != "Spain" {
		t.Fatalf("expected Spain to lead, got %+v", status.Leader)
	}
	if !strings.Contains(buf.String(), "Spain 10 - Brazil 2") {
		t.Fatalf("expected leader in log output, got %q", buf.String())
	}
}

func TestReporterTicks(t *testing.T) {
	source := &stubSource{}
	r := New(source, nil, nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	deadline := time.After(time.Second)
	for source.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated reports, got %d", source.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	after := source.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if source.calls.Load() != after {
		t.Fatalf("expected no reports after stop; before=%d after=%d", after, source.calls.Load())
	}
	if r.Status().Leader != nil {
		t.Fatalf("expected no leader on an empty board")
	}
}

func TestReporterStopIsIdempotent(t *testing.T) {
	r := New(&stubSource{}, nil, nil, time.Hour)

	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestReporterStartIsIdempotent(t *testing.T) {
	source := &stubSource{notify: make(chan struct{})}
	r := New(source, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	r.Start(ctx)

	<-source.notify
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("expected a single initial report, got %d", got)
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	r := New(&stubSource{}, nil, nil, 0)
	if r.interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", r.interval)
	}
}

func TestReportOnceStampsLastRun(t *testing.T) {
	at := testutil.MustParseRFC3339("2026-06-11T19:00:00Z")
	r := New(&stubSource{board: []domaingames.Result{testutil.SampleResult("Mexico", 1, "Canada", 0)}}, nil, nil, time.Hour)
	r.now = testutil.NowAt(at)

	r.reportOnce()

	status := r.Status()
	if !status.LastRun.Equal(at) {
		t.Fatalf("expected last run %s, got %s", at, status.LastRun)
	}
	if status.Leader == nil || status.Leader.String() != "Mexico 1 - Canada 0" {
		t.Fatalf("unexpected leader %+v", status.Leader)
	}
}

func TestReportOnceTimesCycleWithInjectedClock(t *testing.T) {
	at := testutil.MustParseRFC3339("2026-06-11T19:00:00Z")
	r := New(&stubSource{}, nil, metrics.NewRecorder(), time.Hour)

	calls := 0
	r.now = func() time.Time {
		calls++
		return at.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}

	r.reportOnce()

	status := r.Status()
	if status.LastDuration != 250*time.Millisecond {
		t.Fatalf("expected 250ms cycle, got %s", status.LastDuration)
	}
	if !status.LastRun.Equal(at) {
		t.Fatalf("expected last run at cycle start, got %s", status.LastRun)
	}
}
