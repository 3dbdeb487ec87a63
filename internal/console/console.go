package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/logging"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const usage = `commands:
  start HOME AWAY          start a game at 0-0
  end HOME AWAY            end the game between HOME and AWAY
  end-id ID                end a game by id
  update HOME AWAY H A     set the score of HOME vs AWAY
  score ID H A             set the score of a game by id
  goal TEAM                add a goal for TEAM
  revoke TEAM              take back TEAM's last goal
  result ID                show a game's current result
  id TEAM                  show the id of TEAM's game
  board                    list games in the order they started
  summary                  list games ranked by total score
  reset                    remove all games
  help                     show this help
  quit                     exit
Quote multi-word team names: start "South Korea" Greece`

// Scoreboard is the set of operations the console drives.
type Scoreboard interface {
	StartGame(home, away string) (string, error)
	EndGame(home, away string) (domaingames.Result, error)
	EndGameByID(gameID string) (domaingames.Result, error)
	UpdateScore(home, away string, homeScore, awayScore int) (domaingames.Result, error)
	UpdateScoreByID(gameID string, homeScore, awayScore int) (domaingames.Result, error)
	Goal(team string) error
	RevokeGoal(team string) error
	GameIDByTeam(team string) (string, error)
	Result(gameID string) (domaingames.Result, error)
	Board() []domaingames.Result
	BoardDescending() []domaingames.Result
	Reset()
}

// Console reads commands line by line and writes one response per command.
type Console struct {
	board  Scoreboard
	out    io.Writer
	logger *slog.Logger
	format string
}

// New constructs a Console writing to out. Unknown formats fall back to text.
func New(board Scoreboard, out io.Writer, logger *slog.Logger, format string) *Console {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON {
		format = FormatText
	}
	return &Console{
		board:  board,
		out:    out,
		logger: logger,
		format: format,
	}
}

// Run processes commands from in until EOF, quit, or ctx cancellation.
// A blocked read on in is abandoned when ctx is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	logger := logging.FromContext(ctx, c.logger)
	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read commands: %w", err)
					}
				default:
				}
				return nil
			}
			lineNo++
			if quit := c.Execute(line); quit {
				logging.Debug(logger, "console quit", "line", lineNo)
				return nil
			}
		}
	}
}

// Execute runs a single command line and reports whether the console should stop.
func (c *Console) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	args, err := shlex.Split(line)
	if err != nil {
		c.writeError(domaingames.InvalidArgument(fmt.Sprintf("cannot parse command: %v", err)))
		return false
	}
	if len(args) == 0 {
		return false
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		c.writeLine(usage)
	case "start":
		c.start(args)
	case "end":
		c.end(args)
	case "end-id":
		c.endByID(args)
	case "update":
		c.update(args)
	case "score":
		c.scoreByID(args)
	case "goal":
		c.goal(args)
	case "revoke":
		c.revoke(args)
	case "result":
		c.result(args)
	case "id":
		c.gameID(args)
	case "board":
		c.writeBoard(false, c.board.Board())
	case "summary":
		c.writeBoard(true, c.board.BoardDescending())
	case "reset":
		c.board.Reset()
		c.writeMessage("ok")
	default:
		c.writeError(domaingames.InvalidArgument(fmt.Sprintf("unknown command %q; try help", cmd)))
	}
	return false
}

func (c *Console) start(args []string) {
	if !c.expectArgs("start", args, 2) {
		return
	}
	id, err := c.board.StartGame(args[0], args[1])
	if err != nil {
		c.writeError(err)
		return
	}
	c.writeID(id)
}

func (c *Console) end(args []string) {
	if !c.expectArgs("end", args, 2) {
		return
	}
	c.writeResult(c.board.EndGame(args[0], args[1]))
}

func (c *Console) endByID(args []string) {
	if !c.expectArgs("end-id", args, 1) {
		return
	}
	c.writeResult(c.board.EndGameByID(args[0]))
}

func (c *Console) update(args []string) {
	if !c.expectArgs("update", args, 4) {
		return
	}
	home, away, err := parseScores(args[2], args[3])
	if err != nil {
		c.writeError(err)
		return
	}
	c.writeResult(c.board.UpdateScore(args[0], args[1], home, away))
}

func (c *Console) scoreByID(args []string) {
	if !c.expectArgs("score", args, 3) {
		return
	}
	home, away, err := parseScores(args[1], args[2])
	if err != nil {
		c.writeError(err)
		return
	}
	c.writeResult(c.board.UpdateScoreByID(args[0], home, away))
}

func (c *Console) goal(args []string) {
	if !c.expectArgs("goal", args, 1) {
		return
	}
	if err := c.board.Goal(args[0]); err != nil {
		c.writeError(err)
		return
	}
	c.writeTeamResult(args[0])
}

func (c *Console) revoke(args []string) {
	if !c.expectArgs("revoke", args, 1) {
		return
	}
	if err := c.board.RevokeGoal(args[0]); err != nil {
		c.writeError(err)
		return
	}
	c.writeTeamResult(args[0])
}

func (c *Console) result(args []string) {
	if !c.expectArgs("result", args, 1) {
		return
	}
	c.writeResult(c.board.Result(args[0]))
}

func (c *Console) gameID(args []string) {
	if !c.expectArgs("id", args, 1) {
		return
	}
	id, err := c.board.GameIDByTeam(args[0])
	if err != nil {
		c.writeError(err)
		return
	}
	c.writeID(id)
}

// writeTeamResult shows the team's game after a score change. The game may
// have ended in between, in which case only ok is written.
func (c *Console) writeTeamResult(team string) {
	id, err := c.board.GameIDByTeam(team)
	if err != nil {
		c.writeMessage("ok")
		return
	}
	res, err := c.board.Result(id)
	if err != nil {
		c.writeMessage("ok")
		return
	}
	c.writeResult(res, nil)
}

func (c *Console) expectArgs(cmd string, args []string, n int) bool {
	if len(args) == n {
		return true
	}
	c.writeError(domaingames.InvalidArgument(fmt.Sprintf("%s expects %d argument(s), got %d", cmd, n, len(args))))
	return false
}

func parseScores(homeRaw, awayRaw string) (int, int, error) {
	home, err := strconv.Atoi(homeRaw)
	if err != nil {
		return 0, 0, domaingames.InvalidArgument(fmt.Sprintf("home score %q is not a number", homeRaw))
	}
	away, err := strconv.Atoi(awayRaw)
	if err != nil {
		return 0, 0, domaingames.InvalidArgument(fmt.Sprintf("away score %q is not a number", awayRaw))
	}
	return home, away, nil
}

func (c *Console) writeID(id string) {
	if c.format == FormatJSON {
		c.writeJSON(map[string]string{"gameId": id})
		return
	}
	c.writeLine("game " + id)
}

func (c *Console) writeResult(res domaingames.Result, err error) {
	if err != nil {
		c.writeError(err)
		return
	}
	if c.format == FormatJSON {
		c.writeJSON(res)
		return
	}
	c.writeLine(res.String())
}

func (c *Console) writeBoard(ranked bool, results []domaingames.Result) {
	if c.format == FormatJSON {
		c.writeJSON(domaingames.NewBoardResponse(ranked, results))
		return
	}
	if len(results) == 0 {
		c.writeLine("no games")
		return
	}
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, res.String())
	}
	c.writeLine(b.String())
}

func (c *Console) writeMessage(msg string) {
	if c.format == FormatJSON {
		c.writeJSON(map[string]string{"status": msg})
		return
	}
	c.writeLine(msg)
}

func (c *Console) writeError(err error) {
	kind := domaingames.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	if c.format == FormatJSON {
		body := map[string]any{"error": err.Error(), "kind": kind}
		if domaingames.IsConflict(err) {
			body["retry"] = true
		}
		c.writeJSON(body)
		return
	}
	c.writeLine(fmt.Sprintf("error: %s: %v", kind, err))
}

func (c *Console) writeJSON(payload any) {
	if err := json.NewEncoder(c.out).Encode(payload); err != nil {
		logging.Error(c.logger, "failed to encode response", err)
	}
}

func (c *Console) writeLine(s string) {
	if _, err := fmt.Fprintln(c.out, s); err != nil {
		logging.Error(c.logger, "failed to write response", err)
	}
}
