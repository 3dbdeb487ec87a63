package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
)

// gameNamespace scopes name-based game identifiers.
var gameNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("scoreboard-service/games"))

// beforeRevokeSwap runs between the read and the compare-and-swap in RevokeGoal.
var beforeRevokeSwap func()

type nowFunc func() time.Time

type teamScore struct {
	team  string
	score atomic.Int64
}

type game struct {
	id string
	// scoreMu pairs the two stores of an absolute update with snapshot reads.
	scoreMu   sync.RWMutex
	home      teamScore
	away      teamScore
	startedAt time.Time
	seq       uint64
}

// side returns the score slot the team occupies. Home is checked first.
func (g *game) side(team string) *teamScore {
	if g.home.team == team {
		return &g.home
	}
	if g.away.team == team {
		return &g.away
	}
	return nil
}

func (g *game) result() domaingames.Result {
	g.scoreMu.RLock()
	defer g.scoreMu.RUnlock()
	return g.resultLocked()
}

func (g *game) resultLocked() domaingames.Result {
	return domaingames.Result{
		GameID:    g.id,
		HomeTeam:  g.home.team,
		HomeScore: int(g.home.score.Load()),
		AwayTeam:  g.away.team,
		AwayScore: int(g.away.score.Load()),
	}
}

// Registry is the in-memory scoreboard of active games.
//
// Structural changes (add, remove, clear) hold the write lock so the
// team-uniqueness check and the mutation happen as one step. Score changes
// only need the read lock to resolve the game; the counters themselves are
// atomic, and an absolute update holds the game's score lock so snapshots
// never see one side of it.
type Registry struct {
	mu     sync.RWMutex
	games  []*game
	byID   map[string]*game
	byTeam map[string]*game
	seq    uint64
	now    nowFunc
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*game),
		byTeam: make(map[string]*game),
		now:    time.Now,
	}
}

// GameID derives the identifier for the ordered (home, away) pair.
func GameID(home, away string) string {
	key := fmt.Sprintf("%d:%s|%d:%s", len(home), home, len(away), away)
	return uuid.NewSHA1(gameNamespace, []byte(key)).String()
}

// AddGame starts a game at 0-0 and returns its identifier.
func (r *Registry) AddGame(home, away string) (string, error) {
	if isBlank(home) || isBlank(away) {
		return "", domaingames.InvalidArgument(fmt.Sprintf("home %q and away %q must be non-empty", home, away))
	}
	if home == away {
		return "", domaingames.InvalidGame(home)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.byTeam[home]; ok {
		return "", domaingames.TeamAlreadyPlaying(home, g.id)
	}
	if g, ok := r.byTeam[away]; ok {
		return "", domaingames.TeamAlreadyPlaying(away, g.id)
	}

	r.seq++
	g := &game{
		id:        GameID(home, away),
		startedAt: r.now(),
		seq:       r.seq,
	}
	g.home.team = home
	g.away.team = away

	r.games = append(r.games, g)
	r.byID[g.id] = g
	r.byTeam[home] = g
	r.byTeam[away] = g
	return g.id, nil
}

// RemoveGame deletes a game by id and returns its final result.
func (r *Registry) RemoveGame(gameID string) (domaingames.Result, error) {
	if isBlank(gameID) {
		return domaingames.Result{}, domaingames.InvalidArgument("game id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[gameID]
	if !ok {
		return domaingames.Result{}, domaingames.UnknownGame(gameID)
	}
	r.removeLocked(g)
	return g.result(), nil
}

// RemoveGameByTeams deletes the game with exactly this home/away orientation.
func (r *Registry) RemoveGameByTeams(home, away string) (domaingames.Result, error) {
	if isBlank(home) || isBlank(away) {
		return domaingames.Result{}, domaingames.InvalidArgument("teams cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byTeam[home]
	if !ok || g.home.team != home || g.away.team != away {
		return domaingames.Result{}, domaingames.UnknownPairing(home, away)
	}
	r.removeLocked(g)
	return g.result(), nil
}

func (r *Registry) removeLocked(g *game) {
	delete(r.byID, g.id)
	delete(r.byTeam, g.home.team)
	delete(r.byTeam, g.away.team)
	if i := slices.Index(r.games, g); i >= 0 {
		r.games = slices.Delete(r.games, i, i+1)
	}
}

// GameIDByTeam returns the id of the game the team is playing.
func (r *Registry) GameIDByTeam(team string) (string, error) {
	if isBlank(team) {
		return "", domaingames.InvalidArgument("team cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byTeam[team]
	if !ok {
		return "", domaingames.UnknownTeam(team)
	}
	return g.id, nil
}

// ScoreBoard returns results in insertion order.
func (r *Registry) ScoreBoard() []domaingames.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domaingames.Result, 0, len(r.games))
	for _, g := range r.games {
		results = append(results, g.result())
	}
	return results
}

type rankedResult struct {
	result    domaingames.Result
	startedAt time.Time
	seq       uint64
}

// ScoreBoardDescending returns results ordered by total score, highest first.
// Equal totals put the most recently added game first.
func (r *Registry) ScoreBoardDescending() []domaingames.Result {
	r.mu.RLock()
	ranked := make([]rankedResult, 0, len(r.games))
	for _, g := range r.games {
		ranked = append(ranked, rankedResult{result: g.result(), startedAt: g.startedAt, seq: g.seq})
	}
	r.mu.RUnlock()

	slices.SortFunc(ranked, compareRanked)

	results := make([]domaingames.Result, 0, len(ranked))
	for _, rr := range ranked {
		results = append(results, rr.result)
	}
	return results
}

func compareRanked(a, b rankedResult) int {
	if c := cmp.Compare(b.result.Total(), a.result.Total()); c != 0 {
		return c
	}
	if c := b.startedAt.Compare(a.startedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.seq, a.seq)
}

// UpdateScore sets both scores to absolute values.
func (r *Registry) UpdateScore(gameID string, homeScore, awayScore int) (domaingames.Result, error) {
	if isBlank(gameID) {
		return domaingames.Result{}, domaingames.InvalidArgument("game id cannot be empty")
	}
	if homeScore < 0 || awayScore < 0 {
		return domaingames.Result{}, domaingames.NegativeScore(gameID, homeScore, awayScore)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[gameID]
	if !ok {
		return domaingames.Result{}, domaingames.UnknownGame(gameID)
	}
	g.scoreMu.Lock()
	defer g.scoreMu.Unlock()
	g.home.score.Store(int64(homeScore))
	g.away.score.Store(int64(awayScore))
	return g.resultLocked(), nil
}

// Goal adds one to the team's score.
func (r *Registry) Goal(team string) error {
	if isBlank(team) {
		return domaingames.InvalidArgument("team cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, err := r.slotLocked(team)
	if err != nil {
		return err
	}
	slot.score.Add(1)
	return nil
}

// RevokeGoal takes one goal back from the team. It makes a single
// compare-and-swap attempt; a concurrent change fails with a conflict
// error the caller may retry.
func (r *Registry) RevokeGoal(team string) error {
	if isBlank(team) {
		return domaingames.InvalidArgument("team cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, err := r.slotLocked(team)
	if err != nil {
		return err
	}

	current := slot.score.Load()
	if current <= 0 {
		return domaingames.NothingToRevoke(team)
	}
	if beforeRevokeSwap != nil {
		beforeRevokeSwap()
	}
	if !slot.score.CompareAndSwap(current, current-1) {
		return domaingames.ScoreConflict(team)
	}
	return nil
}

func (r *Registry) slotLocked(team string) (*teamScore, error) {
	g, ok := r.byTeam[team]
	if !ok {
		return nil, domaingames.UnknownTeam(team)
	}
	slot := g.side(team)
	if slot == nil {
		return nil, domaingames.UnknownTeam(team)
	}
	return slot, nil
}

// CurrentResult returns the live result of a game.
func (r *Registry) CurrentResult(gameID string) (domaingames.Result, error) {
	if isBlank(gameID) {
		return domaingames.Result{}, domaingames.InvalidArgument("game id cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[gameID]
	if !ok {
		return domaingames.Result{}, domaingames.UnknownGame(gameID)
	}
	return g.result(), nil
}

// Totals returns the number of active games and the goals scored across them.
func (r *Registry) Totals() (activeGames, totalGoals int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.games {
		totalGoals += g.result().Total()
	}
	return len(r.games), totalGoals
}

// Len returns the number of active games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Clear removes every game.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games = nil
	r.byID = make(map[string]*game)
	r.byTeam = make(map[string]*game)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
