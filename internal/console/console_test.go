package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/scoreboard-service/internal/app/games"
	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/store"
	"github.com/preston-bernstein/scoreboard-service/internal/testutil"
)

func newConsole(format string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	svc := games.NewService(store.NewRegistry())
	return New(svc, &out, nil, format), &out
}

func run(t *testing.T, c *Console, script string) {
	t.Helper()
	if err := c.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestConsoleStartGoalAndSummary(t *testing.T) {
	c, out := newConsole(FormatText)

	run(t, c, `
# opening fixtures
start Mexico Canada
start "South Korea" Greece
goal Mexico
goal Mexico
goal Greece
summary
`)

	got := out.String()
	if !strings.Contains(got, "Mexico 2 - Canada 0") {
		t.Fatalf("expected Mexico's score after goals, got %q", got)
	}
	if !strings.Contains(got, "1. Mexico 2 - Canada 0\n2. South Korea 0 - Greece 1") {
		t.Fatalf("expected ranked summary, got %q", got)
	}
}

func TestConsoleErrorsDoNotStopTheLoop(t *testing.T) {
	c, out := newConsole(FormatText)

	run(t, c, `
start Australia Australia
goal Mordor
revoke Shire
update Italy
score some-id x 1
launch rockets
start Italy Portugal
board
`)

	got := out.String()
	for _, want := range []string{
		"error: invalid_game:",
		"error: unknown_team:",
		"error: invalid_argument: update expects 4 argument(s), got 1",
		`error: invalid_argument: home score "x" is not a number`,
		`error: invalid_argument: unknown command "launch"`,
		"1. Italy 0 - Portugal 0",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output, got %q", want, got)
		}
	}
}

func TestConsoleRevokeOnZeroScore(t *testing.T) {
	c, out := newConsole(FormatText)

	run(t, c, "start India Columbia\nrevoke Columbia\n")

	if !strings.Contains(out.String(), "error: invalid_score: no goal to revoke (team=Columbia)") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestConsoleEndAndLookups(t *testing.T) {
	c, out := newConsole(FormatText)
	id := store.GameID("Poland", "Slovakia")

	run(t, c, strings.Join([]string{
		"start Poland Slovakia",
		"id Slovakia",
		"score " + id + " 2 1",
		"result " + id,
		"update Poland Slovakia 3 1",
		"end Poland Slovakia",
		"end-id " + id,
		"board",
	}, "\n"))

	got := out.String()
	for _, want := range []string{
		"game " + id,
		"Poland 2 - Slovakia 1",
		"Poland 3 - Slovakia 1",
		"error: unknown_game:",
		"no games",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output, got %q", want, got)
		}
	}
}

func TestConsoleQuitStopsProcessing(t *testing.T) {
	c, out := newConsole(FormatText)

	run(t, c, "start Nepal Gambia\nquit\nstart Sweden Moldova\n")

	if strings.Contains(out.String(), "Sweden") {
		t.Fatalf("expected commands after quit to be ignored, got %q", out.String())
	}
}

func TestConsoleResetAndHelp(t *testing.T) {
	c, out := newConsole(FormatText)

	run(t, c, "start Nepal Gambia\nreset\nboard\nhelp\n")

	got := out.String()
	if !strings.Contains(got, "ok\nno games") {
		t.Fatalf("expected reset then empty board, got %q", got)
	}
	if !strings.Contains(got, "summary") {
		t.Fatalf("expected usage text, got %q", got)
	}
}

func TestConsoleJSONFormat(t *testing.T) {
	var out bytes.Buffer
	svc := games.NewService(testutil.NewRegistryWithResults(t, testutil.WorldCupResults()))
	c := New(svc, &out, nil, "JSON")

	c.Execute("summary")
	c.Execute("goal Mordor")

	dec := json.NewDecoder(&out)
	var board domaingames.BoardResponse
	if err := dec.Decode(&board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if !board.Ranked || len(board.Games) != 5 {
		t.Fatalf("unexpected board %+v", board)
	}
	if board.Games[0].HomeTeam != "Uruguay" || board.Games[1].HomeTeam != "Spain" {
		t.Fatalf("expected Uruguay then Spain, got %+v", board.Games[:2])
	}

	var errBody map[string]any
	if err := dec.Decode(&errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody["kind"] != string(domaingames.KindUnknownTeam) {
		t.Fatalf("unexpected error body %+v", errBody)
	}
}

func TestConsoleStopsOnContextCancel(t *testing.T) {
	c, _ := newConsole(FormatText)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, pr) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("console did not stop after cancel")
	}
}

func TestConsoleUnparseableLine(t *testing.T) {
	c, out := newConsole(FormatText)
	c.Execute(`start "Unclosed Mexico`)
	if !strings.Contains(out.String(), "error: invalid_argument: cannot parse command") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
