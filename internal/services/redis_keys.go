package services

import "time"

const (
	KeyUserSession     = "user:%d:session:%s"
	KeyWallet          = "wallet:%d"
	KeyRound           = "round:%s"
	KeyUserRound       = "user:%d:round:%s" // current round id per (user, game)
	KeyRoundNonce      = "round:%s:nonce"
	KeyBet             = "bet:%s"
	KeyTowersGame      = "towers:game:%s"
	KeyUserTowersGame  = "user:%d:towers:active" // active game pointer, the single-writer slot
	KeyHistory         = "history:%s"            // keyed by bet id, append-only
	KeyUserHistory     = "user:%d:history"
	KeyTransaction     = "transaction:%s"
	KeyUserTransaction = "user:%d:transactions"
	KeyRateLimit       = "ratelimit:%d:%s"

	TTLUserSession = 24 * time.Hour
	TTLTransaction = 30 * 24 * time.Hour // 30 days

	DefaultRateLimitBets    = 30  // Max 30 bets per minute
	DefaultRateLimitSelects = 120 // Max 120 card selections per minute
	DefaultRateLimitCashout = 60  // Max 60 cashouts per minute
)
