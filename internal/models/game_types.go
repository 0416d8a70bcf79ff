package models

// DiceRollRequest is the caller-facing dice bet. Targets are percentages
// with two-decimal resolution; TargetB/C/D are required only by the
// two-target and two-range modes.
type DiceRollRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Mode          string  `json:"mode" binding:"required"`
	TargetA       float64 `json:"target_a" binding:"required"`
	TargetB       float64 `json:"target_b"`
	TargetC       float64 `json:"target_c"`
	TargetD       float64 `json:"target_d"`
	ClientSeed    string  `json:"client_seed"`
	FreeBetItemID string  `json:"free_bet_item_id"`
}

type DiceRollResponse struct {
	Roll       float64   `json:"roll"`
	Win        bool      `json:"win"`
	Chance     float64   `json:"chance"`
	Multiplier float64   `json:"multiplier"`
	Payout     float64   `json:"payout"`
	Bet        *Bet      `json:"bet"`
	Round      RoundInfo `json:"round"`
}

type TowersStartRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Difficulty    string  `json:"difficulty" binding:"required"`
	ClientSeed    string  `json:"client_seed"`
	FreeBetItemID string  `json:"free_bet_item_id"`
}

type TowersStartResponse struct {
	GameID string    `json:"game_id"`
	Bet    *Bet      `json:"bet"`
	Round  RoundInfo `json:"round"`
}

type TowersSelectRequest struct {
	GameID string `json:"game_id" binding:"required"`
	Column *int   `json:"column" binding:"required"`
}

// TowersSelectResult is either a standing offer (game still active) or the
// terminal outcome of the selection.
type TowersSelectResult struct {
	GameID      string  `json:"game_id"`
	Row         int     `json:"row"`
	Column      int     `json:"column"`
	Safe        bool    `json:"safe"`
	GameOver    bool    `json:"game_over"`
	RowsCleared int     `json:"rows_cleared"`
	Multiplier  float64 `json:"multiplier"`
	// Deck and Bet are set only on terminal selections.
	Deck [][]string `json:"deck,omitempty"`
	Bet  *Bet       `json:"bet,omitempty"`
}

type TowersEndRequest struct {
	GameID string `json:"game_id" binding:"required"`
}

type TowersEndResult struct {
	GameID     string     `json:"game_id"`
	Deck       [][]string `json:"deck"`
	Multiplier float64    `json:"multiplier"`
	Bet        *Bet       `json:"bet"`
}

type VerifyRequest struct {
	BetID string `json:"bet_id" binding:"required"`
}

// VerifyResult is the replay proof: the revealed seed material plus the
// recomputed outcome, which must match the archived settlement exactly.
type VerifyResult struct {
	BetID      string `json:"bet_id"`
	Game       string `json:"game"`
	ServerSeed string `json:"server_seed"`
	HashedSeed string `json:"hashed_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      int64  `json:"nonce"`

	Roll       float64    `json:"roll,omitempty"`
	Deck       [][]string `json:"deck,omitempty"`
	Win        bool       `json:"win"`
	Multiplier float64    `json:"multiplier"`
	Payout     float64    `json:"payout"`
	Matches    bool       `json:"matches"`
}
