package models

import "time"

// Round is one commit-reveal cycle for a user and game. The server seed
// stays secret while the round is active; only its SHA-256 commitment is
// shown. Ending the round reveals the seed, which unlocks verification of
// every bet placed under it.
//
// Round is a storage record and is never returned to callers directly;
// responses use RoundInfo (pre-reveal) or RevealedRound (post-reveal), so
// the serialized server seed stays inside the store.
type Round struct {
	ID         string `json:"id" redis:"id"`
	UserID     int64  `json:"user_id" redis:"user_id"`
	Game       string `json:"game" redis:"game"` // "dice" or "towers"
	ServerSeed string `json:"server_seed" redis:"server_seed"`
	HashedSeed string `json:"hashed_seed" redis:"hashed_seed"`
	ClientSeed string `json:"client_seed" redis:"client_seed"`
	Active     bool   `json:"active" redis:"active"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	EndedAt   time.Time `json:"ended_at,omitempty" redis:"ended_at"`
}

// RoundInfo is the committed round material safe to show before reveal.
type RoundInfo struct {
	ID         string `json:"id"`
	HashedSeed string `json:"hashed_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      int64  `json:"nonce"`
}

// RevealedRound is a terminated round with its seed disclosed.
type RevealedRound struct {
	ID         string `json:"id"`
	ServerSeed string `json:"server_seed"`
	HashedSeed string `json:"hashed_seed"`
	ClientSeed string `json:"client_seed"`
}
