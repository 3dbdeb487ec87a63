package games

import (
	"log/slog"
	"time"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-service/internal/metrics"
)

// Operation names used for metrics and logs.
const (
	OpStartGame     = "start_game"
	OpEndGame       = "end_game"
	OpUpdateScore   = "update_score"
	OpGoal          = "goal"
	OpRevokeGoal    = "revoke_goal"
	OpGameIDByTeam  = "game_id_by_team"
	OpCurrentResult = "current_result"
	OpReset         = "reset"
)

// Store defines the scoreboard registry contract.
type Store interface {
	AddGame(home, away string) (string, error)
	RemoveGame(gameID string) (domaingames.Result, error)
	RemoveGameByTeams(home, away string) (domaingames.Result, error)
	GameIDByTeam(team string) (string, error)
	ScoreBoard() []domaingames.Result
	ScoreBoardDescending() []domaingames.Result
	UpdateScore(gameID string, homeScore, awayScore int) (domaingames.Result, error)
	Goal(team string) error
	RevokeGoal(team string) error
	CurrentResult(gameID string) (domaingames.Result, error)
	Clear()
}

// Service coordinates scoreboard operations on a Store, recording metrics
// and logs for each call.
type Service struct {
	store         Store
	logger        *slog.Logger
	metrics       *metrics.Recorder
	revokeRetries int
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithRevokeRetries bounds how many times RevokeGoal retries a conflict.
func WithRevokeRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.revokeRetries = n
		}
	}
}

// NewService constructs a Service with the provided Store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGame adds a new game at 0-0 and returns its id.
func (s *Service) StartGame(home, away string) (string, error) {
	start := time.Now()
	id, err := s.store.AddGame(home, away)
	s.observe(OpStartGame, start, err,
		logging.FieldHomeTeam, home, logging.FieldAwayTeam, away, logging.FieldGameID, id)
	return id, err
}

// EndGame removes the game between home and away and returns its final result.
func (s *Service) EndGame(home, away string) (domaingames.Result, error) {
	start := time.Now()
	res, err := s.store.RemoveGameByTeams(home, away)
	s.observe(OpEndGame, start, err, logging.FieldHomeTeam, home, logging.FieldAwayTeam, away)
	return res, err
}

// EndGameByID removes a game by id and returns its final result.
func (s *Service) EndGameByID(gameID string) (domaingames.Result, error) {
	start := time.Now()
	res, err := s.store.RemoveGame(gameID)
	s.observe(OpEndGame, start, err, logging.FieldGameID, gameID)
	return res, err
}

// UpdateScore sets the score of the game between home and away. Both teams
// must be playing each other.
func (s *Service) UpdateScore(home, away string, homeScore, awayScore int) (domaingames.Result, error) {
	start := time.Now()
	res, err := s.updateByTeams(home, away, homeScore, awayScore)
	s.observe(OpUpdateScore, start, err, logging.FieldHomeTeam, home, logging.FieldAwayTeam, away)
	return res, err
}

func (s *Service) updateByTeams(home, away string, homeScore, awayScore int) (domaingames.Result, error) {
	if _, err := s.store.GameIDByTeam(away); err != nil {
		return domaingames.Result{}, err
	}
	homeID, err := s.store.GameIDByTeam(home)
	if err != nil {
		return domaingames.Result{}, err
	}
	current, err := s.store.CurrentResult(homeID)
	if err != nil {
		return domaingames.Result{}, err
	}
	if !current.Involves(away) {
		return domaingames.Result{}, &domaingames.Error{
			Kind:    domaingames.KindUnknownGame,
			Message: "teams are not playing each other",
			Team:    home,
			GameID:  homeID,
		}
	}
	if current.HomeTeam != home {
		// Same game, opposite orientation.
		return domaingames.Result{}, domaingames.UnknownPairing(home, away)
	}
	return s.store.UpdateScore(homeID, homeScore, awayScore)
}

// UpdateScoreByID sets the score of a game by id.
func (s *Service) UpdateScoreByID(gameID string, homeScore, awayScore int) (domaingames.Result, error) {
	start := time.Now()
	res, err := s.store.UpdateScore(gameID, homeScore, awayScore)
	s.observe(OpUpdateScore, start, err, logging.FieldGameID, gameID)
	return res, err
}

// Goal adds one goal to the team.
func (s *Service) Goal(team string) error {
	start := time.Now()
	err := s.store.Goal(team)
	s.observe(OpGoal, start, err, logging.FieldTeam, team)
	return err
}

// RevokeGoal takes one goal back from the team, retrying compare-and-swap
// conflicts up to the configured bound. Other failures return immediately.
func (s *Service) RevokeGoal(team string) error {
	start := time.Now()
	var err error
	for attempt := 0; attempt <= s.revokeRetries; attempt++ {
		err = s.store.RevokeGoal(team)
		if !domaingames.IsConflict(err) {
			break
		}
		logging.Debug(s.logger, "revoke goal conflict",
			logging.FieldTeam, team, logging.FieldAttempt, attempt+1)
	}
	s.observe(OpRevokeGoal, start, err, logging.FieldTeam, team)
	return err
}

// GameIDByTeam returns the id of the game the team is playing.
func (s *Service) GameIDByTeam(team string) (string, error) {
	start := time.Now()
	id, err := s.store.GameIDByTeam(team)
	s.observe(OpGameIDByTeam, start, err, logging.FieldTeam, team)
	return id, err
}

// Result returns the live result of a game.
func (s *Service) Result(gameID string) (domaingames.Result, error) {
	start := time.Now()
	res, err := s.store.CurrentResult(gameID)
	s.observe(OpCurrentResult, start, err, logging.FieldGameID, gameID)
	return res, err
}

// Board returns the scoreboard in insertion order.
func (s *Service) Board() []domaingames.Result {
	return s.store.ScoreBoard()
}

// BoardDescending returns the ranked summary board.
func (s *Service) BoardDescending() []domaingames.Result {
	return s.store.ScoreBoardDescending()
}

// Reset removes every game.
func (s *Service) Reset() {
	start := time.Now()
	s.store.Clear()
	s.observe(OpReset, start, nil)
	logging.Info(s.logger, "scoreboard reset")
}

func (s *Service) observe(op string, start time.Time, err error, args ...any) {
	duration := time.Since(start)
	kind := domaingames.KindOf(err)
	s.metrics.RecordOperation(op, duration, err, string(kind), domaingames.IsConflict(err))

	args = append(args, logging.FieldOperation, op, logging.FieldDurationMS, duration.Milliseconds())
	if err != nil {
		logging.Warn(s.logger, "scoreboard operation rejected", append(args, logging.FieldKind, kind, "error", err)...)
		return
	}
	logging.Debug(s.logger, "scoreboard operation", args...)
}
