package models

import "errors"

// GameError is a caller-presentable failure with a stable reason code.
// Infrastructure errors (redis down, etc.) are never wrapped in a
// GameError; they propagate unchanged.
type GameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GameError) Error() string {
	return e.Message
}

var (
	ErrInvalidMode       = &GameError{Code: "INVALID_MODE", Message: "unrecognized dice mode"}
	ErrInvalidDifficulty = &GameError{Code: "INVALID_DIFFICULTY", Message: "unrecognized difficulty"}
	ErrInvalidAmount     = &GameError{Code: "INVALID_AMOUNT", Message: "bet amount must be between 1 and 10000 cents"}
	ErrInvalidTargets    = &GameError{Code: "INVALID_TARGETS", Message: "invalid dice targets"}
	ErrInvalidCardNumber = &GameError{Code: "INVALID_CARD_NUMBER", Message: "invalid card number"}
	ErrInvalidGameID     = &GameError{Code: "INVALID_GAME_ID", Message: "game id does not match active game"}
	ErrNoActiveGame      = &GameError{Code: "NO_ACTIVE_GAME", Message: "no active game"}
	ErrNoTileSelected    = &GameError{Code: "NO_TILE_SELECTED", Message: "no tile selected yet"}
	ErrRoundStillActive  = &GameError{Code: "ROUND_STILL_ACTIVE", Message: "round is still active, rotate the seed first"}
	ErrGameStillActive   = &GameError{Code: "GAME_STILL_ACTIVE", Message: "a game for this round is still open"}
	ErrRoundNotFound     = &GameError{Code: "ROUND_NOT_FOUND", Message: "round not found"}
	ErrSeedMissing       = &GameError{Code: "SEED_MISSING", Message: "revealed server seed missing"}
)

// AsGameError unwraps err to a *GameError when it carries one.
func AsGameError(err error) (*GameError, bool) {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
