package testutil

import (
	"testing"

	domaingames "github.com/preston-bernstein/scoreboard-service/internal/domain/games"
	"github.com/preston-bernstein/scoreboard-service/internal/store"
)

// NewRegistryWithResults builds a registry holding the given games and scores, added in order.
func NewRegistryWithResults(t *testing.T, results []domaingames.Result) *store.Registry {
	t.Helper()
	r := store.NewRegistry()
	for _, res := range results {
		id, err := r.AddGame(res.HomeTeam, res.AwayTeam)
		if err != nil {
			t.Fatalf("add %s vs %s: %v", res.HomeTeam, res.AwayTeam, err)
		}
		if _, err := r.UpdateScore(id, res.HomeScore, res.AwayScore); err != nil {
			t.Fatalf("update %s: %v", id, err)
		}
	}
	return r
}
