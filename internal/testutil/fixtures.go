package testutil

import (
	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
)

// SampleResult returns a result fixture for the pairing and score.
func SampleResult(home string, homeScore int, away string, awayScore int) domaingames.Result {
	return domaingames.Result{
		HomeTeam:  home,
		HomeScore: homeScore,
		AwayTeam:  away,
		AwayScore: awayScore,
	}
}

// WorldCupResults is the summary-board fixture used across tests, in insertion order.
func WorldCupResults() []domaingames.Result {
	return []domaingames.Result{
		SampleResult("Mexico", 0, "Canada", 5),
		SampleResult("Spain", 10, "Brazil", 2),
		SampleResult("Germany", 2, "France", 2),
		SampleResult("Uruguay", 6, "Italy", 6),
		SampleResult("Argentina", 3, "Australia", 1),
	}
}
