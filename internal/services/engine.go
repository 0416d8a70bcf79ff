package services

import (
	"fmt"
	"sync"
	"time"

	"cashdash-casino-backend/internal/config"
	"cashdash-casino-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// GameEngine orchestrates the provably fair games: rounds, bets, dice
// rolls, the towers progression, and verification. Outcome math lives in
// internal/fair; the engine wires it to the Redis stores and the ledger.
type GameEngine struct {
	redisService *RedisService
	broadcaster  Broadcaster
	edge         float64

	// userLocks serializes game starts and seed rotation per user; the
	// single-active-game slot is read-then-write across several keys.
	userLocks sync.Map
}

func NewGameEngine(redisService *RedisService, cfg *config.Config) *GameEngine {
	return &GameEngine{
		redisService: redisService,
		edge:         cfg.HouseEdge,
	}
}

// SetBroadcaster attaches the push channel; nil stays safe to call around.
func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

func (ge *GameEngine) userLock(userID int64) *sync.Mutex {
	lock, _ := ge.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// GetSeedInfo returns the committed material of the user's current round,
// creating a round if none exists.
func (ge *GameEngine) GetSeedInfo(userID int64, game, clientSeed string) (*models.RoundInfo, error) {
	round, err := ge.redisService.GetOrCreateRound(userID, game, clientSeed)
	if err != nil {
		return nil, err
	}

	return ge.roundInfo(round, 0), nil
}

// RotateSeed ends the user's current round, revealing its server seed, and
// commits a fresh round. Rotation is refused while a towers game is open:
// revealing the seed mid-game would expose the remaining board.
func (ge *GameEngine) RotateSeed(userID int64, game, clientSeed string) (*models.RevealedRound, *models.RoundInfo, error) {
	lock := ge.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if game == "towers" {
		_, err := ge.redisService.GetUserActiveTowersGame(userID)
		if err == nil {
			return nil, nil, models.ErrGameStillActive
		}
		if err != redis.Nil {
			return nil, nil, err
		}
	}

	ended, err := ge.redisService.EndRound(userID, game)
	if err == redis.Nil {
		return nil, nil, models.ErrRoundNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	next, err := ge.redisService.GetOrCreateRound(userID, game, clientSeed)
	if err != nil {
		return nil, nil, err
	}

	revealed := &models.RevealedRound{
		ID:         ended.ID,
		ServerSeed: ended.ServerSeed,
		HashedSeed: ended.HashedSeed,
		ClientSeed: ended.ClientSeed,
	}

	return revealed, ge.roundInfo(next, 0), nil
}

func (ge *GameEngine) roundInfo(round *models.Round, nonce int64) *models.RoundInfo {
	return &models.RoundInfo{
		ID:         round.ID,
		HashedSeed: round.HashedSeed,
		ClientSeed: round.ClientSeed,
		Nonce:      nonce,
	}
}

// placeBet records the wager and locks the stake. Free bets (promotional
// items) never touch the balance.
func (ge *GameEngine) placeBet(userID int64, game string, amount float64, round *models.Round, nonce int64, freeBetItemID string) (*models.Bet, error) {
	// Materializes the wallet on first contact, so the balance scripts
	// never see a missing key.
	if _, err := ge.redisService.GetWallet(userID); err != nil {
		return nil, err
	}

	if freeBetItemID == "" {
		if err := ge.redisService.LockBalanceForGame(userID, amount); err != nil {
			return nil, fmt.Errorf("failed to lock balance: %v", err)
		}
	}

	bet := &models.Bet{
		ID:            models.GenerateBetID(),
		UserID:        userID,
		Game:          game,
		Amount:        amount,
		Status:        models.BetStatusActive,
		RoundID:       round.ID,
		ClientSeed:    round.ClientSeed,
		Nonce:         nonce,
		FreeBetItemID: freeBetItemID,
		CreatedAt:     time.Now(),
	}

	if err := ge.redisService.SaveBet(bet); err != nil {
		if freeBetItemID == "" {
			ge.redisService.ReleaseBalanceFromGame(userID, amount, false, 0)
		}
		return nil, err
	}

	return bet, nil
}

// closeoutBet settles an active bet at the given multiplier, at most once:
// an already-settled bet is returned unchanged so retried terminal
// transitions cannot double-pay.
func (ge *GameEngine) closeoutBet(bet *models.Bet, multiplier float64) (*models.Bet, error) {
	if bet.Status == models.BetStatusSettled {
		return bet, nil
	}

	payout := models.CalculatePayout(bet.Amount, multiplier)

	lockedAmount := bet.Amount
	if bet.FreeBetItemID != "" {
		lockedAmount = 0
	}
	if err := ge.redisService.ReleaseBalanceFromGame(bet.UserID, lockedAmount, payout > 0, payout); err != nil {
		return nil, fmt.Errorf("failed to settle bet %s: %v", bet.ID, err)
	}

	bet.Status = models.BetStatusSettled
	bet.Multiplier = multiplier
	bet.Payout = payout
	bet.SettledAt = time.Now()

	if err := ge.redisService.SaveBet(bet); err != nil {
		return nil, err
	}

	ge.recordTransaction(bet)
	ge.broadcastBalance(bet.UserID)

	return bet, nil
}

func (ge *GameEngine) recordTransaction(bet *models.Bet) error {
	txType := models.TransactionTypeBet
	amount := -bet.Amount
	description := fmt.Sprintf("Lost %s bet %s", bet.Game, models.FormatCurrency(bet.Amount))

	switch {
	case bet.Payout > 0 && bet.Multiplier == 1:
		txType = models.TransactionTypeRefund
		amount = bet.Payout
		description = fmt.Sprintf("Refunded %s bet", bet.Game)
	case bet.Payout > 0:
		txType = models.TransactionTypeWin
		amount = bet.Payout
		description = fmt.Sprintf("Won %s on %s (%.4fx)",
			models.FormatCurrency(bet.Payout), bet.Game, bet.Multiplier)
	}

	wallet, err := ge.redisService.GetWallet(bet.UserID)
	if err != nil {
		return err
	}

	tx := &models.Transaction{
		ID:            models.GenerateTransactionID(),
		UserID:        bet.UserID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: wallet.Balance - amount,
		BalanceAfter:  wallet.Balance,
		BetID:         bet.ID,
		Description:   description,
		CreatedAt:     time.Now(),
	}

	return ge.redisService.SaveTransaction(tx)
}

func (ge *GameEngine) broadcastBalance(userID int64) {
	if ge.broadcaster == nil {
		return
	}
	ge.broadcaster.BroadcastBalanceUpdate(userID)
}
