package services

import (
	"encoding/json"
	"fmt"
	"time"

	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Rounds -------------------------------------------------------------------

// GetOrCreateRound returns the user's current round for a game, creating
// and committing a fresh one when none exists. The client seed is fixed at
// round creation; changing it requires rotating the round.
func (s *RedisService) GetOrCreateRound(userID int64, game, clientSeed string) (*models.Round, error) {
	round, err := s.GetCurrentRound(userID, game)
	if err == nil {
		return round, nil
	}
	if err != redis.Nil {
		return nil, err
	}

	if clientSeed == "" {
		wallet, err := s.GetWallet(userID)
		if err != nil {
			return nil, err
		}
		clientSeed = wallet.ClientSeed
	}

	serverSeed, err := fair.GenerateServerSeed()
	if err != nil {
		return nil, err
	}

	round = &models.Round{
		ID:         models.GenerateRoundID(),
		UserID:     userID,
		Game:       game,
		ServerSeed: serverSeed,
		HashedSeed: fair.HashServerSeed(serverSeed),
		ClientSeed: clientSeed,
		Active:     true,
		CreatedAt:  time.Now(),
	}

	if err := s.saveRound(round); err != nil {
		return nil, err
	}

	pointerKey := fmt.Sprintf(KeyUserRound, userID, game)
	if err := s.client.Set(s.ctx, pointerKey, round.ID, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to set current round: %v", err)
	}

	return round, nil
}

// GetCurrentRound returns redis.Nil when the user has no active round.
func (s *RedisService) GetCurrentRound(userID int64, game string) (*models.Round, error) {
	pointerKey := fmt.Sprintf(KeyUserRound, userID, game)

	roundID, err := s.client.Get(s.ctx, pointerKey).Result()
	if err != nil {
		return nil, err
	}

	return s.GetRound(roundID)
}

func (s *RedisService) GetRound(roundID string) (*models.Round, error) {
	data, err := s.client.Get(s.ctx, fmt.Sprintf(KeyRound, roundID)).Result()
	if err != nil {
		return nil, err
	}

	var round models.Round
	if err := json.Unmarshal([]byte(data), &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %v", err)
	}

	return &round, nil
}

func (s *RedisService) saveRound(round *models.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %v", err)
	}

	return s.client.Set(s.ctx, fmt.Sprintf(KeyRound, round.ID), data, 0).Err()
}

// EndRound deactivates the user's current round and clears the pointer,
// which makes the server seed safe to reveal.
func (s *RedisService) EndRound(userID int64, game string) (*models.Round, error) {
	round, err := s.GetCurrentRound(userID, game)
	if err != nil {
		return nil, err
	}

	round.Active = false
	round.EndedAt = time.Now()
	if err := s.saveRound(round); err != nil {
		return nil, err
	}

	pointerKey := fmt.Sprintf(KeyUserRound, userID, game)
	if err := s.client.Del(s.ctx, pointerKey).Err(); err != nil {
		return nil, fmt.Errorf("failed to clear current round: %v", err)
	}

	return round, nil
}

// NextNonce atomically hands out the next nonce for a round, starting at 1.
func (s *RedisService) NextNonce(roundID string) (int64, error) {
	return s.client.Incr(s.ctx, fmt.Sprintf(KeyRoundNonce, roundID)).Result()
}

// Bets ---------------------------------------------------------------------

func (s *RedisService) SaveBet(bet *models.Bet) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %v", err)
	}

	return s.client.Set(s.ctx, fmt.Sprintf(KeyBet, bet.ID), data, 0).Err()
}

func (s *RedisService) GetBet(betID string) (*models.Bet, error) {
	data, err := s.client.Get(s.ctx, fmt.Sprintf(KeyBet, betID)).Result()
	if err != nil {
		return nil, err
	}

	var bet models.Bet
	if err := json.Unmarshal([]byte(data), &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %v", err)
	}

	return &bet, nil
}

// History ------------------------------------------------------------------

// InsertHistory archives a settled bet. The record is write-once: a
// second insert for the same bet id is a no-op, which keeps retried
// settlements idempotent.
func (s *RedisService) InsertHistory(record *models.HistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %v", err)
	}

	key := fmt.Sprintf(KeyHistory, record.BetID)
	if err := s.client.SetNX(s.ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to insert history: %v", err)
	}

	userKey := fmt.Sprintf(KeyUserHistory, record.UserID)
	if err := s.client.ZAdd(s.ctx, userKey, redis.Z{
		Score:  float64(record.EndedAt.Unix()),
		Member: record.BetID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to user history: %v", err)
	}

	s.client.ZRemRangeByRank(s.ctx, userKey, 0, -101)

	return nil
}

func (s *RedisService) GetHistory(betID string) (*models.HistoryRecord, error) {
	data, err := s.client.Get(s.ctx, fmt.Sprintf(KeyHistory, betID)).Result()
	if err != nil {
		return nil, err
	}

	var record models.HistoryRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history record: %v", err)
	}

	return &record, nil
}

func (s *RedisService) GetUserHistory(userID int64, limit int64) ([]*models.HistoryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	betIDs, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyUserHistory, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history IDs: %v", err)
	}

	var records []*models.HistoryRecord
	for _, betID := range betIDs {
		record, err := s.GetHistory(betID)
		if err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// Active towers games ------------------------------------------------------

var createTowersGameScript = redis.NewScript(`
	local existing = redis.call("GET", KEYS[1])
	if existing then
		return existing
	end

	redis.call("SET", KEYS[2], ARGV[2])
	redis.call("SET", KEYS[1], ARGV[1])
	return ""
`)

// CreateTowersGame installs the game as the user's single active game.
// If another game already occupies the slot its id is returned and nothing
// is written; the caller must settle and clear it first.
func (s *RedisService) CreateTowersGame(game *models.TowersGame) (conflictID string, err error) {
	data, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to marshal towers game: %v", err)
	}

	pointerKey := fmt.Sprintf(KeyUserTowersGame, game.UserID)
	gameKey := fmt.Sprintf(KeyTowersGame, game.ID)

	res, err := createTowersGameScript.Run(s.ctx, s.client,
		[]string{pointerKey, gameKey}, game.ID, data).Result()
	if err != nil {
		return "", fmt.Errorf("failed to create towers game: %v", err)
	}

	return res.(string), nil
}

func (s *RedisService) GetTowersGame(gameID string) (*models.TowersGame, error) {
	data, err := s.client.Get(s.ctx, fmt.Sprintf(KeyTowersGame, gameID)).Result()
	if err != nil {
		return nil, err
	}

	var game models.TowersGame
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal towers game: %v", err)
	}

	return &game, nil
}

// GetUserActiveTowersGame returns redis.Nil when the slot is empty.
func (s *RedisService) GetUserActiveTowersGame(userID int64) (*models.TowersGame, error) {
	gameID, err := s.client.Get(s.ctx, fmt.Sprintf(KeyUserTowersGame, userID)).Result()
	if err != nil {
		return nil, err
	}

	return s.GetTowersGame(gameID)
}

// Script replies understood by MarkCardPlayed callers.
const (
	markReplyNotFound      = "MARK_NOT_FOUND"
	markReplyIDMismatch    = "MARK_ID_MISMATCH"
	markReplyNotActive     = "MARK_NOT_ACTIVE"
	markReplyBadCell       = "MARK_BAD_CELL"
	markReplyAlreadyPlayed = "MARK_ALREADY_PLAYED"
	markReplyNoTile        = "MARK_NO_TILE"
)

var markCardPlayedScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return redis.error_reply("MARK_NOT_FOUND")
	end

	local game = cjson.decode(data)
	if game.id ~= ARGV[1] then
		return redis.error_reply("MARK_ID_MISMATCH")
	end
	if game.status ~= "in_progress" then
		return redis.error_reply("MARK_NOT_ACTIVE")
	end

	local row = game.rows_cleared + 1
	local col = tonumber(ARGV[2]) + 1
	local cells = game.deck[row]
	if not cells or not cells[col] then
		return redis.error_reply("MARK_BAD_CELL")
	end

	local marker = cells[col]
	if marker == "played" then
		return redis.error_reply("MARK_ALREADY_PLAYED")
	end

	cells[col] = "played"
	game.played[row][col] = marker

	if marker == "lose" then
		game.status = "lost"
	else
		game.rows_cleared = game.rows_cleared + 1
		if game.rows_cleared >= game.rows then
			game.status = "won"
		end
	end
	game.updated_at = ARGV[3]

	local updated = cjson.encode(game)
	redis.call("SET", KEYS[1], updated)
	return updated
`)

// MarkCardPlayed atomically opens one cell of the current row and applies
// the resulting state transition (loss, win on the last row, or one more
// cleared row). The script reads rows_cleared itself, so concurrent
// selections on the same game cannot corrupt the deck or double-advance.
func (s *RedisService) MarkCardPlayed(gameID string, column int) (*models.TowersGame, error) {
	key := fmt.Sprintf(KeyTowersGame, gameID)

	res, err := markCardPlayedScript.Run(s.ctx, s.client, []string{key},
		gameID, column, time.Now().Format(time.RFC3339Nano)).Result()
	if err != nil {
		return nil, err
	}

	var game models.TowersGame
	if err := json.Unmarshal([]byte(res.(string)), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated game: %v", err)
	}

	return &game, nil
}

var terminateTowersGameScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return redis.error_reply("MARK_NOT_FOUND")
	end

	local game = cjson.decode(data)
	if game.id ~= ARGV[1] then
		return redis.error_reply("MARK_ID_MISMATCH")
	end
	if game.status ~= "in_progress" then
		return redis.error_reply("MARK_NOT_ACTIVE")
	end
	if ARGV[2] == "cashed_out" and game.rows_cleared == 0 then
		return redis.error_reply("MARK_NO_TILE")
	end

	game.status = ARGV[2]
	game.updated_at = ARGV[3]

	local updated = cjson.encode(game)
	redis.call("SET", KEYS[1], updated)
	return updated
`)

// TerminateTowersGame atomically moves an in-progress game to a terminal
// status (cashed_out or lost). Only the caller that wins this transition
// settles the bet, so a retried cashout cannot double-settle.
func (s *RedisService) TerminateTowersGame(gameID string, status models.TowersStatus) (*models.TowersGame, error) {
	key := fmt.Sprintf(KeyTowersGame, gameID)

	res, err := terminateTowersGameScript.Run(s.ctx, s.client, []string{key},
		gameID, string(status), time.Now().Format(time.RFC3339Nano)).Result()
	if err != nil {
		return nil, err
	}

	var game models.TowersGame
	if err := json.Unmarshal([]byte(res.(string)), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal terminated game: %v", err)
	}

	return &game, nil
}

// ClearTowersGame removes the game record and, when it still points at
// this game, the user's active slot.
func (s *RedisService) ClearTowersGame(userID int64, gameID string) error {
	pointerKey := fmt.Sprintf(KeyUserTowersGame, userID)

	current, err := s.client.Get(s.ctx, pointerKey).Result()
	if err == nil && current == gameID {
		if err := s.client.Del(s.ctx, pointerKey).Err(); err != nil {
			return fmt.Errorf("failed to clear active game slot: %v", err)
		}
	} else if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read active game slot: %v", err)
	}

	return s.client.Del(s.ctx, fmt.Sprintf(KeyTowersGame, gameID)).Err()
}
