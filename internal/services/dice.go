package services

import (
	"context"
	"fmt"
	"time"

	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"
)

// DiceRoll plays one complete dice bet: derives the roll from the user's
// current round, evaluates the mode, settles the ledger, and archives the
// result for later verification.
func (ge *GameEngine) DiceRoll(ctx context.Context, userID int64, req *models.DiceRollRequest) (*models.DiceRollResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, b, c, d, err := req.DiceTargetsBP()
	if err != nil {
		return nil, err
	}

	diceBet := fair.DiceBet{
		Mode:    fair.DiceMode(req.Mode),
		TargetA: a,
		TargetB: b,
		TargetC: c,
		TargetD: d,
		Edge:    ge.edge,
	}

	// Multiplier and chance are fixed before the roll is derived.
	multiplier, err := fair.DiceMultiplier(diceBet)
	if err != nil {
		return nil, err
	}
	chance, err := fair.DiceChance(diceBet)
	if err != nil {
		return nil, err
	}

	round, err := ge.redisService.GetOrCreateRound(userID, "dice", req.ClientSeed)
	if err != nil {
		return nil, err
	}

	nonce, err := ge.redisService.NextNonce(round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve nonce: %v", err)
	}

	bet, err := ge.placeBet(userID, "dice", req.Amount, round, nonce, req.FreeBetItemID)
	if err != nil {
		return nil, err
	}

	roll := fair.Roll(round.ServerSeed, round.ClientSeed, nonce)
	win, err := fair.DiceWins(diceBet, roll)
	if err != nil {
		// Unreachable: the mode was validated before the bet was placed.
		return nil, err
	}

	settleMultiplier := 0.0
	if win {
		settleMultiplier = multiplier
	}

	bet, err = ge.closeoutBet(bet, settleMultiplier)
	if err != nil {
		return nil, err
	}

	record := &models.HistoryRecord{
		BetID:      bet.ID,
		UserID:     userID,
		Game:       "dice",
		RoundID:    round.ID,
		ClientSeed: round.ClientSeed,
		Nonce:      nonce,
		BetAmount:  bet.Amount,
		Mode:       req.Mode,
		TargetA:    a,
		TargetB:    b,
		TargetC:    c,
		TargetD:    d,
		Roll:       roll,
		Edge:       ge.edge,
		Win:        win,
		Multiplier: bet.Multiplier,
		Payout:     bet.Payout,
		EndedAt:    time.Now(),
	}
	if err := ge.redisService.InsertHistory(record); err != nil {
		return nil, err
	}

	return &models.DiceRollResponse{
		Roll:       float64(roll) / 100,
		Win:        win,
		Chance:     chance,
		Multiplier: multiplier,
		Payout:     bet.Payout,
		Bet:        bet,
		Round:      *ge.roundInfo(round, nonce),
	}, nil
}
