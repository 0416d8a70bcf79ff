package models

import "time"

type User struct {
	ID       int64  `json:"id" redis:"id"`
	Username string `json:"username" redis:"username"`

	MaxBet         float64 `json:"max_bet" redis:"max_bet"`
	DailyLossLimit float64 `json:"daily_loss_limit" redis:"daily_loss_limit"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

type UserSession struct {
	ID           int64     `json:"id" redis:"id"`
	SessionID    string    `json:"session_id" redis:"session_id"`
	User         User      `json:"user" redis:"user"`
	CreatedAt    time.Time `json:"created_at" redis:"created_at"`
	LastAccessed time.Time `json:"last_accessed" redis:"last_accessed"`
}
