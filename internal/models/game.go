package models

import "time"

type TowersStatus string

const (
	TowersStatusInProgress TowersStatus = "in_progress"
	TowersStatusLost       TowersStatus = "lost"
	TowersStatusWon        TowersStatus = "won"
	TowersStatusCashedOut  TowersStatus = "cashed_out"
)

// TowersGame is the resumable per-user progressive game. At most one is
// active per user; the store enforces that with a userId -> gameId pointer.
type TowersGame struct {
	ID     string `json:"id" redis:"id"`
	UserID int64  `json:"user_id" redis:"user_id"`
	BetID  string `json:"bet_id" redis:"bet_id"`

	RoundID    string `json:"round_id" redis:"round_id"`
	ClientSeed string `json:"client_seed" redis:"client_seed"`
	Nonce      int64  `json:"nonce" redis:"nonce"`

	Difficulty   string  `json:"difficulty" redis:"difficulty"`
	Rows         int     `json:"rows" redis:"rows"`
	Columns      int     `json:"columns" redis:"columns"`
	LosersPerRow int     `json:"losers_per_row" redis:"losers_per_row"`
	Edge         float64 `json:"edge" redis:"edge"`

	// Deck holds the hidden markers; an opened cell is overwritten with
	// "played". Played mirrors the deck shape but carries markers only for
	// opened cells, so the two merge back into the full board.
	Deck   [][]string `json:"deck" redis:"deck"`
	Played [][]string `json:"played" redis:"played"`

	// RowsCleared counts fully resolved safe rows; it is also the index of
	// the current row awaiting a selection.
	RowsCleared int          `json:"rows_cleared" redis:"rows_cleared"`
	Status      TowersStatus `json:"status" redis:"status"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

// CurrentRow is the index of the first row with no opened cell.
func (g *TowersGame) CurrentRow() int {
	return g.RowsCleared
}

// RevealedDeck merges Deck and Played into the full board, safe to return
// once the game has terminated.
func (g *TowersGame) RevealedDeck() [][]string {
	deck := make([][]string, len(g.Deck))
	for row := range g.Deck {
		cells := make([]string, len(g.Deck[row]))
		for col, marker := range g.Deck[row] {
			if marker == "played" && g.Played[row][col] != "" {
				cells[col] = g.Played[row][col]
			} else {
				cells[col] = marker
			}
		}
		deck[row] = cells
	}
	return deck
}
