package models

type Wallet struct {
	UserID        int64   `json:"user_id" redis:"user_id"`
	Balance       float64 `json:"balance" redis:"balance"`
	LockedBalance float64 `json:"locked_balance" redis:"locked_balance"`
	TotalWagered  float64 `json:"total_wagered" redis:"total_wagered"`
	TotalWon      float64 `json:"total_won" redis:"total_won"`

	// ClientSeed is the default seed mixed into new rounds until the
	// player supplies their own.
	ClientSeed string `json:"client_seed" redis:"client_seed"`
}

type BalanceResponse struct {
	Balance       float64 `json:"balance"`
	LockedBalance float64 `json:"locked_balance"`
	TotalWagered  float64 `json:"total_wagered"`
	TotalWon      float64 `json:"total_won"`
	Available     float64 `json:"available"` // Balance - LockedBalance
}
