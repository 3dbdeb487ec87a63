package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestSetupDisabledReturnsNoHandler(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected no error when disabled, got %v", err)
	}
	if rec == nil {
		t.Fatalf("expected recorder")
	}
	if handler != nil {
		t.Fatalf("expected nil handler when disabled")
	}
	if shutdown == nil {
		t.Fatalf("expected shutdown function")
	}
}

func TestSetupEnabledExposesScoreboardMetrics(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{
		Enabled:     true,
		ServiceName: "scoreboard-test",
		// No OTLP endpoint; uses Prometheus exporter only.
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec == nil || handler == nil || shutdown == nil {
		t.Fatalf("expected recorder, handler, and shutdown")
	}
	defer func() { _ = shutdown(context.Background()) }()

	rec.RecordOperation("add_game", time.Millisecond, nil, "", false)
	rec.RecordOperation("revoke_goal", time.Millisecond, errors.New("changed"), "invalid_score", true)
	rec.RecordBoard(2, 7)
	rec.RecordReporterCycle(time.Millisecond)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{
		"scoreboard_operations_total",
		"scoreboard_revoke_conflicts_total",
		"scoreboard_active_games",
	} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %s in scrape output", name)
		}
	}
}

func TestSetupPropagatesReaderFailure(t *testing.T) {
	orig := promReaderFactory
	t.Cleanup(func() { promReaderFactory = orig })
	promReaderFactory = func() (sdkmetric.Reader, http.Handler, error) {
		return nil, nil, errors.New("registry unavailable")
	}

	_, _, _, err := Setup(context.Background(), TelemetryConfig{Enabled: true})
	if err == nil {
		t.Fatalf("expected reader failure to surface")
	}
}

func TestBoardGaugesFollowWatchedSource(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: true, ServiceName: "scoreboard-test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	rec.WatchBoard(func() (int, int) { return 2, 13 })

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := map[string]string{"scoreboard_active_games": "2", "scoreboard_goals": "13"}
	for _, line := range strings.Split(string(body), "\n") {
		for name, value := range want {
			if strings.HasPrefix(line, name+"{") || strings.HasPrefix(line, name+" ") {
				fields := strings.Fields(line)
				if fields[len(fields)-1] != value {
					t.Fatalf("expected %s=%s, got %q", name, value, line)
				}
				delete(want, name)
			}
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing gauges in scrape output: %v", want)
	}
}
