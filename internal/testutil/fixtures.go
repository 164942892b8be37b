package testutil

import (
	"fmt"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

// SampleGame returns a populated row with the given id.
func SampleGame(id int) games.Game {
	return games.Game{
		ID:             id,
		Title:          fmt.Sprintf("Game %d", id),
		Platform:       "PC",
		DatePurchased:  "2023-12-25T00:00:00.000Z",
		DateLastPlayed: "2024-01-02T20:15:00.000Z",
		Comments:       "sample",
	}
}

// SampleGames returns rows with ids 1..n.
func SampleGames(n int) []games.Game {
	out := make([]games.Game, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, SampleGame(i))
	}
	return out
}
