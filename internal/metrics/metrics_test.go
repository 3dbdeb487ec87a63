package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksOperationsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordOperation("goal", 10*time.Millisecond, nil, "", false)
	rec.RecordOperation("goal", 15*time.Millisecond, errors.New("boom"), "unknown_team", false)

	if got := rec.OperationCalls("goal"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.OperationErrors("goal"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}

	snap := rec.Snapshot("goal")
	if snap.LastLatency != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", snap.LastLatency)
	}
	if snap.Conflicts != 0 {
		t.Fatalf("expected no conflicts, got %d", snap.Conflicts)
	}
}

func TestRecorderTracksConflicts(t *testing.T) {
	rec := NewRecorder()
	rec.RecordOperation("revoke_goal", time.Millisecond, errors.New("changed"), "invalid_score", true)
	rec.RecordOperation("revoke_goal", time.Millisecond, nil, "", true)

	if got := rec.Conflicts("revoke_goal"); got != 1 {
		t.Fatalf("expected conflict flag ignored on success, got %d", got)
	}
}

func TestRecorderBoardTotals(t *testing.T) {
	rec := NewRecorder()
	rec.RecordBoard(3, 17)

	active, goals := rec.Board()
	if active != 3 || goals != 17 {
		t.Fatalf("expected 3 games and 17 goals, got %d and %d", active, goals)
	}
}

func TestRecorderBoardReadsWatchedSource(t *testing.T) {
	rec := NewRecorder()
	rec.RecordBoard(1, 1)

	active, goals := 4, 9
	rec.WatchBoard(func() (int, int) { return active, goals })

	if a, g := rec.Board(); a != 4 || g != 9 {
		t.Fatalf("expected live totals 4/9, got %d/%d", a, g)
	}
	active, goals = 5, 12
	if a, g := rec.Board(); a != 5 || g != 12 {
		t.Fatalf("expected updated totals 5/12, got %d/%d", a, g)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordOperation("goal", time.Millisecond, nil, "", false)
	rec.RecordBoard(1, 1)
	rec.WatchBoard(func() (int, int) { return 1, 1 })
	rec.RecordReporterCycle(time.Millisecond)

	if rec.OperationCalls("goal") != 0 {
		t.Fatalf("expected zero calls from nil recorder")
	}
	if active, goals := rec.Board(); active != 0 || goals != 0 {
		t.Fatalf("expected zero board from nil recorder")
	}
}
