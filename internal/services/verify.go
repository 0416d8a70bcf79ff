package services

import (
	"context"
	"time"

	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// verifyRecheckDelay closes the narrow window between "no active game"
// and round end: a game created concurrently with the verify call becomes
// visible by the second check. A store offering an atomic "no active game
// and round ended" predicate would make this delay unnecessary.
var verifyRecheckDelay = 250 * time.Millisecond

// Verify replays a settled bet from its archived parameters and the
// revealed server seed, proving the outcome was fixed at commit time.
func (ge *GameEngine) Verify(ctx context.Context, userID int64, betID string) (*models.VerifyResult, error) {
	record, err := ge.redisService.GetHistory(betID)
	if err == redis.Nil {
		return nil, models.ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, models.ErrRoundNotFound
	}

	round, err := ge.redisService.GetRound(record.RoundID)
	if err == redis.Nil {
		return nil, models.ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}

	if round.Active {
		return nil, models.ErrRoundStillActive
	}

	open, err := ge.openGameForRound(userID, record.RoundID)
	if err != nil {
		return nil, err
	}
	if open {
		time.Sleep(verifyRecheckDelay)
		if open, err = ge.openGameForRound(userID, record.RoundID); err != nil {
			return nil, err
		}
		if open {
			return nil, models.ErrGameStillActive
		}
	}

	if round.ServerSeed == "" {
		// Defensive: an ended round always carries its seed.
		return nil, models.ErrSeedMissing
	}

	result := &models.VerifyResult{
		BetID:      betID,
		Game:       record.Game,
		ServerSeed: round.ServerSeed,
		HashedSeed: round.HashedSeed,
		ClientSeed: record.ClientSeed,
		Nonce:      record.Nonce,
	}

	switch record.Game {
	case "dice":
		if err := ge.replayDice(record, round, result); err != nil {
			return nil, err
		}
	case "towers":
		if err := ge.replayTowers(record, round, result); err != nil {
			return nil, err
		}
	default:
		return nil, models.ErrRoundNotFound
	}

	return result, nil
}

// replayDice recomputes the roll and settlement through the same pipeline
// used at play time.
func (ge *GameEngine) replayDice(record *models.HistoryRecord, round *models.Round, result *models.VerifyResult) error {
	diceBet := fair.DiceBet{
		Mode:    fair.DiceMode(record.Mode),
		TargetA: record.TargetA,
		TargetB: record.TargetB,
		TargetC: record.TargetC,
		TargetD: record.TargetD,
		Edge:    record.Edge,
	}

	roll := fair.Roll(round.ServerSeed, record.ClientSeed, record.Nonce)

	win, err := fair.DiceWins(diceBet, roll)
	if err != nil {
		return err
	}

	multiplier := 0.0
	payout := 0.0
	if win {
		if multiplier, err = fair.DiceMultiplier(diceBet); err != nil {
			return err
		}
		payout = models.CalculatePayout(record.BetAmount, multiplier)
	}

	result.Roll = float64(roll) / 100
	result.Win = win
	result.Multiplier = multiplier
	result.Payout = payout
	result.Matches = roll == record.Roll && multiplier == record.Multiplier && payout == record.Payout

	return nil
}

// replayTowers rebuilds the full board and the settlement at the recorded
// number of cleared rows.
func (ge *GameEngine) replayTowers(record *models.HistoryRecord, round *models.Round, result *models.VerifyResult) error {
	difficulty, err := fair.DifficultyByName(record.Difficulty)
	if err != nil {
		return err
	}

	deck := fair.BuildDeck(round.ServerSeed, record.ClientSeed, record.Nonce, difficulty)

	multiplier := 0.0
	if record.Win {
		multiplier = fair.TowersMultiplier(record.RowsCleared, difficulty.Columns, difficulty.LosersPerRow, record.Edge)
	}
	payout := models.CalculatePayout(record.BetAmount, multiplier)

	result.Deck = deck
	result.Win = record.Win
	result.Multiplier = multiplier
	result.Payout = payout

	result.Matches = multiplier == record.Multiplier && payout == record.Payout
	if len(deck) != len(record.Deck) {
		result.Matches = false
		return nil
	}
	for row := range deck {
		for col := range deck[row] {
			if deck[row][col] != record.Deck[row][col] {
				result.Matches = false
				return nil
			}
		}
	}
	return nil
}

// openGameForRound reports whether the user still has an active towers
// game derived from the given round.
func (ge *GameEngine) openGameForRound(userID int64, roundID string) (bool, error) {
	game, err := ge.redisService.GetUserActiveTowersGame(userID)
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return game.RoundID == roundID, nil
}
