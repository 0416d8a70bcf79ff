package services_test

import (
	"testing"
	"time"

	"cashdash-casino-backend/internal/config"
	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"
	"cashdash-casino-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisService {
	t.Helper()

	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
		HouseEdge: 1,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { redisService.Close() })

	return redisService
}

func TestWalletLifecycle(t *testing.T) {
	redisService := setupTestRedis(t)

	userID := int64(999901)
	redisService.DeleteWallet(userID)

	wallet, err := redisService.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}

	if wallet.Balance != 10000 {
		t.Errorf("Expected default balance 10000, got %f", wallet.Balance)
	}

	betAmount := 1000.0
	if err := redisService.LockBalanceForGame(userID, betAmount); err != nil {
		t.Errorf("Failed to lock balance: %v", err)
	}

	wallet, err = redisService.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet after lock: %v", err)
	}

	if wallet.Balance != 9000 {
		t.Errorf("Expected balance 9000 after lock, got %f", wallet.Balance)
	}

	if wallet.LockedBalance != 1000 {
		t.Errorf("Expected locked balance 1000, got %f", wallet.LockedBalance)
	}

	// A winning release credits the gross payout.
	if err := redisService.ReleaseBalanceFromGame(userID, betAmount, true, 1980); err != nil {
		t.Errorf("Failed to release balance: %v", err)
	}

	wallet, _ = redisService.GetWallet(userID)
	if wallet.Balance != 10980 {
		t.Errorf("Expected balance 10980 after win, got %f", wallet.Balance)
	}
	if wallet.LockedBalance != 0 {
		t.Errorf("Expected locked balance 0 after release, got %f", wallet.LockedBalance)
	}

	redisService.DeleteWallet(userID)
}

func TestRoundLifecycle(t *testing.T) {
	redisService := setupTestRedis(t)

	userID := int64(999902)
	redisService.DeleteWallet(userID)
	redisService.EndRound(userID, "dice") // drop any round left by a prior run

	round, err := redisService.GetOrCreateRound(userID, "dice", "seed-under-test")
	if err != nil {
		t.Fatalf("Failed to create round: %v", err)
	}

	if round.HashedSeed != fair.HashServerSeed(round.ServerSeed) {
		t.Error("Round commitment must be the hash of the server seed")
	}
	if !round.Active {
		t.Error("New round should be active")
	}

	same, err := redisService.GetOrCreateRound(userID, "dice", "other-seed")
	if err != nil {
		t.Fatalf("Failed to get current round: %v", err)
	}
	if same.ID != round.ID {
		t.Error("Current round should be reused, not replaced")
	}
	if same.ClientSeed != "seed-under-test" {
		t.Error("Client seed is fixed at round creation")
	}

	n1, err := redisService.NextNonce(round.ID)
	if err != nil {
		t.Fatalf("Failed to get nonce: %v", err)
	}
	n2, _ := redisService.NextNonce(round.ID)
	if n2 != n1+1 {
		t.Errorf("Nonces should be consecutive, got %d then %d", n1, n2)
	}

	ended, err := redisService.EndRound(userID, "dice")
	if err != nil {
		t.Fatalf("Failed to end round: %v", err)
	}
	if ended.Active {
		t.Error("Ended round should be inactive")
	}
	if ended.ServerSeed == "" {
		t.Error("Ended round must still carry its server seed")
	}
}

func TestActiveTowersGameStore(t *testing.T) {
	redisService := setupTestRedis(t)

	userID := int64(999903)
	difficulty, _ := fair.DifficultyByName("medium")

	game := testTowersGame(userID, difficulty)
	conflict, err := redisService.CreateTowersGame(game)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	if conflict != "" {
		redisService.ClearTowersGame(userID, conflict)
		if conflict, err = redisService.CreateTowersGame(game); err != nil || conflict != "" {
			t.Fatalf("Failed to create game after clearing slot: %v / %s", err, conflict)
		}
	}

	// A second game for the same user must not take the slot.
	second := testTowersGame(userID, difficulty)
	conflict, err = redisService.CreateTowersGame(second)
	if err != nil {
		t.Fatalf("Create with occupied slot errored: %v", err)
	}
	if conflict != game.ID {
		t.Errorf("Expected conflict with %s, got %q", game.ID, conflict)
	}

	loaded, err := redisService.GetUserActiveTowersGame(userID)
	if err != nil {
		t.Fatalf("Failed to load active game: %v", err)
	}
	if loaded.ID != game.ID {
		t.Errorf("Active game mismatch: expected %s, got %s", game.ID, loaded.ID)
	}

	// Open a safe cell: row 0 advances.
	safeCol := -1
	for col, marker := range game.Deck[0] {
		if marker == fair.CellSafe {
			safeCol = col
			break
		}
	}

	updated, err := redisService.MarkCardPlayed(game.ID, safeCol)
	if err != nil {
		t.Fatalf("Failed to mark card: %v", err)
	}
	if updated.RowsCleared != 1 {
		t.Errorf("Expected 1 cleared row, got %d", updated.RowsCleared)
	}
	if updated.Deck[0][safeCol] != fair.CellPlayed {
		t.Error("Opened cell should be marked played in the deck")
	}
	if updated.Played[0][safeCol] != fair.CellSafe {
		t.Error("Opened cell's marker should be mirrored into the played state")
	}

	redisService.ClearTowersGame(userID, game.ID)

	if _, err := redisService.GetUserActiveTowersGame(userID); err == nil {
		t.Error("Cleared slot should not resolve to a game")
	}
}

func testTowersGame(userID int64, d fair.Difficulty) *models.TowersGame {
	deck := fair.BuildDeck(
		"6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e",
		"store-test-seed", time.Now().UnixNano(), d)

	played := make([][]string, len(deck))
	for row := range deck {
		played[row] = make([]string, d.Columns)
	}

	return &models.TowersGame{
		ID:           models.GenerateGameID(),
		UserID:       userID,
		BetID:        models.GenerateBetID(),
		RoundID:      models.GenerateRoundID(),
		ClientSeed:   "store-test-seed",
		Nonce:        1,
		Difficulty:   d.Name,
		Rows:         fair.TowersRows,
		Columns:      d.Columns,
		LosersPerRow: d.LosersPerRow,
		Edge:         1,
		Deck:         deck,
		Played:       played,
		Status:       models.TowersStatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}
