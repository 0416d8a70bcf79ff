package fair

import (
	"fmt"
	"math"

	"cashdash-casino-backend/internal/models"
)

// Cell markers inside a towers deck. A cell flips to CellPlayed once the
// player opens it; the pre-reveal marker is mirrored into the played-state.
const (
	CellSafe   = "safe"
	CellLose   = "lose"
	CellPlayed = "played"
)

// TowersRows is the fixed height of every board.
const TowersRows = 9

// Difficulty selects the board shape: wider boards with fewer losers pay
// less per row, narrow boards with more losers pay more.
type Difficulty struct {
	Name         string `json:"name"`
	Columns      int    `json:"columns"`
	LosersPerRow int    `json:"losers_per_row"`
}

// Difficulties is the closed preset table. Every preset keeps
// LosersPerRow < Columns, which the payout curve requires.
var Difficulties = map[string]Difficulty{
	"easy":   {Name: "easy", Columns: 4, LosersPerRow: 1},
	"medium": {Name: "medium", Columns: 3, LosersPerRow: 1},
	"hard":   {Name: "hard", Columns: 2, LosersPerRow: 1},
	"expert": {Name: "expert", Columns: 3, LosersPerRow: 2},
	"master": {Name: "master", Columns: 4, LosersPerRow: 3},
}

// DifficultyByName resolves a preset, rejecting unknown names and any
// preset that would make the payout curve undefined.
func DifficultyByName(name string) (Difficulty, error) {
	d, ok := Difficulties[name]
	if !ok {
		return Difficulty{}, models.ErrInvalidDifficulty
	}
	if d.LosersPerRow >= d.Columns {
		return Difficulty{}, fmt.Errorf("invalid difficulty %s: losers %d >= columns %d",
			name, d.LosersPerRow, d.Columns)
	}
	return d, nil
}

// BuildDeck derives the full board for a game: TowersRows independent rows,
// each with exactly d.LosersPerRow losing cells chosen uniformly by the
// row's hash stream. Fully reproducible from the same seeds and nonce.
func BuildDeck(serverSeed, clientSeed string, nonce int64, d Difficulty) [][]string {
	deck := make([][]string, TowersRows)
	for row := 0; row < TowersRows; row++ {
		cells := make([]string, d.Columns)
		for col := range cells {
			cells[col] = CellSafe
		}
		for _, col := range RowLosers(serverSeed, clientSeed, nonce, row, d.Columns, d.LosersPerRow) {
			cells[col] = CellLose
		}
		deck[row] = cells
	}
	return deck
}

// TowersMultiplier is the compounding payout after rowsCleared safe picks:
//
//	((1 - edge/100) * columns / (columns - losersPerRow)) ^ rowsCleared
//
// rounded to four decimals. Strictly increasing in rowsCleared, and above
// 1 for a single cleared row whenever edge is below the fair margin.
func TowersMultiplier(rowsCleared, columns, losersPerRow int, edge float64) float64 {
	base := (1 - edge/100) * float64(columns) / float64(columns-losersPerRow)
	return Round4(math.Pow(base, float64(rowsCleared)))
}
