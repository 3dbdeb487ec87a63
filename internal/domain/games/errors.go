package games

import (
	"errors"
	"fmt"
)

// Kind classifies scoreboard failures.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindInvalidGame        Kind = "invalid_game"
	KindTeamAlreadyPlaying Kind = "team_already_playing"
	KindUnknownGame        Kind = "unknown_game"
	KindUnknownTeam        Kind = "unknown_team"
	KindInvalidScore       Kind = "invalid_score"
)

// Sentinels for errors.Is matching; comparison is by Kind only.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrInvalidGame        = &Error{Kind: KindInvalidGame}
	ErrTeamAlreadyPlaying = &Error{Kind: KindTeamAlreadyPlaying}
	ErrUnknownGame        = &Error{Kind: KindUnknownGame}
	ErrUnknownTeam        = &Error{Kind: KindUnknownTeam}
	ErrInvalidScore       = &Error{Kind: KindInvalidScore}
)

// Error describes a rejected scoreboard operation.
type Error struct {
	Kind    Kind
	Message string
	Team    string
	GameID  string
	// Conflict marks a score that changed between read and compare-and-swap.
	Conflict bool
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Team != "" && e.GameID != "":
		return fmt.Sprintf("%s (team=%s game=%s)", msg, e.Team, e.GameID)
	case e.Team != "":
		return fmt.Sprintf("%s (team=%s)", msg, e.Team)
	case e.GameID != "":
		return fmt.Sprintf("%s (game=%s)", msg, e.GameID)
	}
	return msg
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// AsError attempts to unwrap an error into a scoreboard Error.
func AsError(err error) (*Error, bool) {
	var sbErr *Error
	if errors.As(err, &sbErr) {
		return sbErr, true
	}
	return nil, false
}

// KindOf returns the Kind of a scoreboard error, or "" for nil and foreign errors.
func KindOf(err error) Kind {
	if sbErr, ok := AsError(err); ok {
		return sbErr.Kind
	}
	return ""
}

// IsConflict reports whether err is a retryable compare-and-swap conflict.
func IsConflict(err error) bool {
	sbErr, ok := AsError(err)
	return ok && sbErr.Conflict
}

// InvalidArgument reports malformed caller input.
func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

// InvalidGame reports a team scheduled against itself.
func InvalidGame(team string) error {
	return &Error{Kind: KindInvalidGame, Message: "team cannot play itself", Team: team}
}

// TeamAlreadyPlaying reports a uniqueness violation on add.
func TeamAlreadyPlaying(team, gameID string) error {
	return &Error{
		Kind:    KindTeamAlreadyPlaying,
		Message: "team is already playing a game; end it before adding another",
		Team:    team,
		GameID:  gameID,
	}
}

// UnknownGame reports an identifier that does not resolve.
func UnknownGame(gameID string) error {
	return &Error{Kind: KindUnknownGame, Message: "no game with given id", GameID: gameID}
}

// UnknownTeam reports a team that is not in any active game.
func UnknownTeam(team string) error {
	return &Error{Kind: KindUnknownTeam, Message: "team is not playing", Team: team}
}

// UnknownPairing reports that no active game matches the home/away pair.
func UnknownPairing(home, away string) error {
	return &Error{
		Kind:    KindUnknownTeam,
		Message: fmt.Sprintf("no game between home %q and away %q", home, away),
	}
}

// NegativeScore reports a rejected absolute score update.
func NegativeScore(gameID string, home, away int) error {
	return &Error{
		Kind:    KindInvalidScore,
		Message: fmt.Sprintf("scores cannot be negative (home=%d away=%d)", home, away),
		GameID:  gameID,
	}
}

// NothingToRevoke reports a revoke against a zero score.
func NothingToRevoke(team string) error {
	return &Error{Kind: KindInvalidScore, Message: "no goal to revoke", Team: team}
}

// ScoreConflict reports a concurrent score change during revoke.
func ScoreConflict(team string) error {
	return &Error{
		Kind:     KindInvalidScore,
		Message:  "score changed during operation; retry",
		Team:     team,
		Conflict: true,
	}
}
