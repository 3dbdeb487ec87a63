package games

import "fmt"

// Result is an immutable snapshot of a game's score at a point in time.
type Result struct {
	GameID    string `json:"gameId"`
	HomeTeam  string `json:"homeTeam"`
	HomeScore int    `json:"homeScore"`
	AwayTeam  string `json:"awayTeam"`
	AwayScore int    `json:"awayScore"`
}

// Total returns the combined score of both teams.
func (r Result) Total() int {
	return r.HomeScore + r.AwayScore
}

// String renders the result as "HOME h - AWAY a".
func (r Result) String() string {
	return fmt.Sprintf("%s %d - %s %d", r.HomeTeam, r.HomeScore, r.AwayTeam, r.AwayScore)
}

// Involves reports whether the team plays on either side of the game.
func (r Result) Involves(team string) bool {
	return r.HomeTeam == team || r.AwayTeam == team
}

// BoardResponse is the payload rendered for a scoreboard view.
type BoardResponse struct {
	Ranked bool     `json:"ranked"`
	Games  []Result `json:"games"`
}

// NewBoardResponse builds a BoardResponse payload.
func NewBoardResponse(ranked bool, results []Result) BoardResponse {
	if results == nil {
		results = []Result{}
	}
	return BoardResponse{
		Ranked: ranked,
		Games:  results,
	}
}
