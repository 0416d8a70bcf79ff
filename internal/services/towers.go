package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// TowersStart opens a new progressive game. The user's single active slot
// is honored: a pre-existing game is settled first (auto-cashout at its
// last confirmed multiplier, refund when no row was cleared) rather than
// silently discarded.
func (ge *GameEngine) TowersStart(ctx context.Context, userID int64, req *models.TowersStartRequest) (*models.TowersStartResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	difficulty, err := fair.DifficultyByName(req.Difficulty)
	if err != nil {
		return nil, err
	}

	lock := ge.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	round, err := ge.redisService.GetOrCreateRound(userID, "towers", req.ClientSeed)
	if err != nil {
		return nil, err
	}

	nonce, err := ge.redisService.NextNonce(round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve nonce: %v", err)
	}

	bet, err := ge.placeBet(userID, "towers", req.Amount, round, nonce, req.FreeBetItemID)
	if err != nil {
		return nil, err
	}

	deck := fair.BuildDeck(round.ServerSeed, round.ClientSeed, nonce, difficulty)
	played := make([][]string, len(deck))
	for row := range deck {
		played[row] = make([]string, difficulty.Columns)
	}

	game := &models.TowersGame{
		ID:           models.GenerateGameID(),
		UserID:       userID,
		BetID:        bet.ID,
		RoundID:      round.ID,
		ClientSeed:   round.ClientSeed,
		Nonce:        nonce,
		Difficulty:   difficulty.Name,
		Rows:         fair.TowersRows,
		Columns:      difficulty.Columns,
		LosersPerRow: difficulty.LosersPerRow,
		Edge:         ge.edge,
		Deck:         deck,
		Played:       played,
		RowsCleared:  0,
		Status:       models.TowersStatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	conflictID, err := ge.redisService.CreateTowersGame(game)
	if err != nil {
		return nil, err
	}
	if conflictID != "" {
		if err := ge.supersedeGame(userID, conflictID); err != nil {
			return nil, err
		}
		conflictID, err = ge.redisService.CreateTowersGame(game)
		if err != nil {
			return nil, err
		}
		if conflictID != "" {
			return nil, fmt.Errorf("active game slot still occupied by %s", conflictID)
		}
	}

	return &models.TowersStartResponse{
		GameID: game.ID,
		Bet:    bet,
		Round:  *ge.roundInfo(round, nonce),
	}, nil
}

// supersedeGame settles an abandoned game before a new one replaces it:
// cashed out at the last confirmed row, or refunded at 1x when nothing
// was cleared yet.
func (ge *GameEngine) supersedeGame(userID int64, gameID string) error {
	game, err := ge.redisService.GetTowersGame(gameID)
	if err == redis.Nil {
		// Dangling pointer without a game record; just clear the slot.
		return ge.redisService.ClearTowersGame(userID, gameID)
	}
	if err != nil {
		return err
	}

	terminated, err := ge.redisService.TerminateTowersGame(gameID, models.TowersStatusCashedOut)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), markReplyNoTile):
			// Nothing cleared yet: the cashout transition refuses, so
			// refund the stake at 1x and retire the game directly.
			_, settleErr := ge.settleTowers(game, 1.0, models.TowersStatusCashedOut)
			return settleErr
		case strings.Contains(err.Error(), markReplyNotActive):
			// Already terminal; just make sure the slot is clear.
			return ge.redisService.ClearTowersGame(userID, gameID)
		default:
			return err
		}
	}

	multiplier := fair.TowersMultiplier(terminated.RowsCleared, terminated.Columns, terminated.LosersPerRow, terminated.Edge)
	_, err = ge.settleTowers(terminated, multiplier, models.TowersStatusCashedOut)
	return err
}

// TowersSelect opens one cell of the current row.
func (ge *GameEngine) TowersSelect(ctx context.Context, userID int64, gameID string, column int) (*models.TowersSelectResult, error) {
	game, err := ge.redisService.GetUserActiveTowersGame(userID)
	if err == redis.Nil {
		return nil, models.ErrNoActiveGame
	}
	if err != nil {
		return nil, err
	}

	// Column range is checked against the active game before anything
	// else; an out-of-range index is invalid regardless of game state.
	if column < 0 || column >= game.Columns {
		return nil, models.ErrInvalidCardNumber
	}

	if gameID != game.ID {
		return nil, models.ErrInvalidGameID
	}

	updated, err := ge.redisService.MarkCardPlayed(gameID, column)
	if err != nil {
		return nil, mapMarkError(err)
	}

	switch updated.Status {
	case models.TowersStatusLost:
		bet, err := ge.settleTowers(updated, 0, models.TowersStatusLost)
		if err != nil {
			return nil, err
		}
		return &models.TowersSelectResult{
			GameID:      gameID,
			Row:         updated.RowsCleared,
			Column:      column,
			Safe:        false,
			GameOver:    true,
			RowsCleared: updated.RowsCleared,
			Multiplier:  0,
			Deck:        updated.RevealedDeck(),
			Bet:         bet,
		}, nil

	case models.TowersStatusWon:
		multiplier := fair.TowersMultiplier(updated.RowsCleared, updated.Columns, updated.LosersPerRow, updated.Edge)
		bet, err := ge.settleTowers(updated, multiplier, models.TowersStatusWon)
		if err != nil {
			return nil, err
		}
		return &models.TowersSelectResult{
			GameID:      gameID,
			Row:         updated.RowsCleared - 1,
			Column:      column,
			Safe:        true,
			GameOver:    true,
			RowsCleared: updated.RowsCleared,
			Multiplier:  multiplier,
			Deck:        updated.RevealedDeck(),
			Bet:         bet,
		}, nil

	default:
		// Safe pick, game continues: offer the next multiplier. The cell
		// is already durably marked, so any failure from here on is
		// surfaced to the caller instead of being swallowed.
		offer := fair.TowersMultiplier(updated.RowsCleared, updated.Columns, updated.LosersPerRow, updated.Edge)
		if ge.broadcaster != nil {
			ge.broadcaster.BroadcastTowersOffer(userID, gameID, updated.RowsCleared, offer)
		}
		return &models.TowersSelectResult{
			GameID:      gameID,
			Row:         updated.RowsCleared - 1,
			Column:      column,
			Safe:        true,
			GameOver:    false,
			RowsCleared: updated.RowsCleared,
			Multiplier:  offer,
		}, nil
	}
}

// TowersEnd cashes out the game at its last confirmed row.
func (ge *GameEngine) TowersEnd(ctx context.Context, userID int64, gameID string) (*models.TowersEndResult, error) {
	game, err := ge.redisService.GetTowersGame(gameID)
	if err == redis.Nil {
		return nil, models.ErrNoActiveGame
	}
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, models.ErrNoActiveGame
	}

	terminated, err := ge.redisService.TerminateTowersGame(gameID, models.TowersStatusCashedOut)
	if err != nil {
		return nil, mapMarkError(err)
	}

	multiplier := fair.TowersMultiplier(terminated.RowsCleared, terminated.Columns, terminated.LosersPerRow, terminated.Edge)
	bet, err := ge.settleTowers(terminated, multiplier, models.TowersStatusCashedOut)
	if err != nil {
		return nil, err
	}

	return &models.TowersEndResult{
		GameID:     gameID,
		Deck:       terminated.RevealedDeck(),
		Multiplier: multiplier,
		Bet:        bet,
	}, nil
}

// GetActiveTowersGame returns the user's resumable game with hidden cells
// redacted: only opened markers and board shape are exposed mid-game.
func (ge *GameEngine) GetActiveTowersGame(userID int64) (*models.TowersGame, error) {
	game, err := ge.redisService.GetUserActiveTowersGame(userID)
	if err == redis.Nil {
		return nil, models.ErrNoActiveGame
	}
	if err != nil {
		return nil, err
	}

	redacted := *game
	redacted.Deck = nil
	return &redacted, nil
}

// settleTowers performs the terminal transition bookkeeping: closes out
// the bet, archives the full deck, clears the active slot.
func (ge *GameEngine) settleTowers(game *models.TowersGame, multiplier float64, status models.TowersStatus) (*models.Bet, error) {
	bet, err := ge.redisService.GetBet(game.BetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bet %s: %v", game.BetID, err)
	}

	bet, err = ge.closeoutBet(bet, multiplier)
	if err != nil {
		return nil, err
	}

	record := &models.HistoryRecord{
		BetID:       bet.ID,
		UserID:      game.UserID,
		Game:        "towers",
		RoundID:     game.RoundID,
		ClientSeed:  game.ClientSeed,
		Nonce:       game.Nonce,
		BetAmount:   bet.Amount,
		Difficulty:  game.Difficulty,
		Deck:        game.RevealedDeck(),
		RowsCleared: game.RowsCleared,
		Edge:        game.Edge,
		Win:         multiplier > 0,
		Multiplier:  bet.Multiplier,
		Payout:      bet.Payout,
		EndedAt:     time.Now(),
	}
	if err := ge.redisService.InsertHistory(record); err != nil {
		return nil, err
	}

	if err := ge.redisService.ClearTowersGame(game.UserID, game.ID); err != nil {
		return nil, err
	}

	if ge.broadcaster != nil {
		ge.broadcaster.BroadcastTowersSettled(game.UserID, game.ID, string(status), bet.Payout)
	}

	return bet, nil
}

// mapMarkError translates script replies into the caller-facing taxonomy.
func mapMarkError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, markReplyNotFound), strings.Contains(msg, markReplyNotActive):
		return models.ErrNoActiveGame
	case strings.Contains(msg, markReplyIDMismatch):
		return models.ErrInvalidGameID
	case strings.Contains(msg, markReplyBadCell), strings.Contains(msg, markReplyAlreadyPlayed):
		return models.ErrInvalidCardNumber
	case strings.Contains(msg, markReplyNoTile):
		return models.ErrNoTileSelected
	default:
		return err
	}
}
