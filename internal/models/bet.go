package models

import "time"

type BetStatus string

const (
	BetStatusActive  BetStatus = "active"
	BetStatusSettled BetStatus = "settled"
)

// Bet is one wager in the ledger. Dice bets settle immediately; towers
// bets stay active until the progressive game terminates.
type Bet struct {
	ID     string    `json:"id" redis:"id"`
	UserID int64     `json:"user_id" redis:"user_id"`
	Game   string    `json:"game" redis:"game"`
	Amount float64   `json:"amount" redis:"amount"`
	Status BetStatus `json:"status" redis:"status"`

	RoundID    string `json:"round_id" redis:"round_id"`
	ClientSeed string `json:"client_seed" redis:"client_seed"`
	Nonce      int64  `json:"nonce" redis:"nonce"`

	// FreeBetItemID marks a promotional bet; it never locks balance.
	FreeBetItemID string `json:"free_bet_item_id,omitempty" redis:"free_bet_item_id"`

	Multiplier float64 `json:"multiplier" redis:"multiplier"`
	Payout     float64 `json:"payout" redis:"payout"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	SettledAt time.Time `json:"settled_at,omitempty" redis:"settled_at"`
}

// HistoryRecord is the immutable archive of a settled bet, keyed by bet
// id. It carries everything verification needs to replay the outcome once
// the round's seed is revealed.
type HistoryRecord struct {
	BetID      string  `json:"bet_id" redis:"bet_id"`
	UserID     int64   `json:"user_id" redis:"user_id"`
	Game       string  `json:"game" redis:"game"`
	RoundID    string  `json:"round_id" redis:"round_id"`
	ClientSeed string  `json:"client_seed" redis:"client_seed"`
	Nonce      int64   `json:"nonce" redis:"nonce"`
	BetAmount  float64 `json:"bet_amount" redis:"bet_amount"`

	// Dice fields.
	Mode    string `json:"mode,omitempty" redis:"mode"`
	TargetA int    `json:"target_a,omitempty" redis:"target_a"`
	TargetB int    `json:"target_b,omitempty" redis:"target_b"`
	TargetC int    `json:"target_c,omitempty" redis:"target_c"`
	TargetD int    `json:"target_d,omitempty" redis:"target_d"`
	Roll    int    `json:"roll,omitempty" redis:"roll"`

	// Towers fields. Deck is the full revealed board.
	Difficulty  string     `json:"difficulty,omitempty" redis:"difficulty"`
	Deck        [][]string `json:"deck,omitempty" redis:"deck"`
	RowsCleared int        `json:"rows_cleared,omitempty" redis:"rows_cleared"`

	Edge       float64   `json:"edge" redis:"edge"`
	Win        bool      `json:"win" redis:"win"`
	Multiplier float64   `json:"multiplier" redis:"multiplier"`
	Payout     float64   `json:"payout" redis:"payout"`
	EndedAt    time.Time `json:"ended_at" redis:"ended_at"`
}
