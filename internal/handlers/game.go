package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cashdash-casino-backend/internal/models"
	"cashdash-casino-backend/internal/services"
)

type GameHandler struct {
	gameEngine   *services.GameEngine
	redisService *services.RedisService
}

func NewGameHandler(gameEngine *services.GameEngine, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		gameEngine:   gameEngine,
		redisService: redisService,
	}
}

// respondGameError maps the engine's coded failures onto HTTP statuses;
// anything uncoded is an infrastructure error.
func respondGameError(c *gin.Context, err error) {
	ge, ok := models.AsGameError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
		return
	}

	status := http.StatusBadRequest
	switch ge {
	case models.ErrNoActiveGame, models.ErrRoundNotFound:
		status = http.StatusNotFound
	case models.ErrRoundStillActive, models.ErrGameStillActive:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error": ge.Message,
		"code":  ge.Code,
	})
}

func (h *GameHandler) DiceRoll(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.DiceRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Rate Limit: 30 bets per minute
	allowed, err := h.redisService.CheckRateLimit(userID, "bet", services.DefaultRateLimitBets, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many bets. Please wait."})
		return
	}

	result, err := h.gameEngine.DiceRoll(c.Request.Context(), userID, &req)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) TowersStart(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.TowersStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	allowed, err := h.redisService.CheckRateLimit(userID, "bet", services.DefaultRateLimitBets, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many bets. Please wait."})
		return
	}

	result, err := h.gameEngine.TowersStart(c.Request.Context(), userID, &req)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) TowersSelect(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.TowersSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Rate Limit: 120 selections per minute
	allowed, err := h.redisService.CheckRateLimit(userID, "select", services.DefaultRateLimitSelects, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many selections. Please wait."})
		return
	}

	result, err := h.gameEngine.TowersSelect(c.Request.Context(), userID, req.GameID, *req.Column)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) TowersCashout(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.TowersEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Rate Limit: 60 cashouts per minute
	allowed, err := h.redisService.CheckRateLimit(userID, "cashout", services.DefaultRateLimitCashout, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many cashouts. Please wait."})
		return
	}

	result, err := h.gameEngine.TowersEnd(c.Request.Context(), userID, req.GameID)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) TowersActive(c *gin.Context) {
	userID := c.GetInt64("user_id")

	game, err := h.gameEngine.GetActiveTowersGame(userID)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game":    game,
	})
}

func (h *GameHandler) GetBalance(c *gin.Context) {
	userID := c.GetInt64("user_id")

	wallet, err := h.redisService.GetWallet(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get wallet",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": models.BalanceResponse{
			Balance:       wallet.Balance,
			LockedBalance: wallet.LockedBalance,
			TotalWagered:  wallet.TotalWagered,
			TotalWon:      wallet.TotalWon,
			Available:     wallet.Balance - wallet.LockedBalance,
		},
	})
}

func (h *GameHandler) GetGameHistory(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	records, err := h.redisService.GetUserHistory(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get game history",
			"details": err.Error(),
		})
		return
	}

	response := make([]gin.H, 0, len(records))
	for _, record := range records {
		result := "lose"
		if record.Win {
			result = "win"
		}

		response = append(response, gin.H{
			"bet_id":     record.BetID,
			"game":       record.Game,
			"bet_amount": record.BetAmount,
			"multiplier": record.Multiplier,
			"payout":     record.Payout,
			"result":     result,
			"ended_at":   record.EndedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   response,
		"count":   len(response),
	})
}

func (h *GameHandler) GetSeed(c *gin.Context) {
	userID := c.GetInt64("user_id")

	game := c.DefaultQuery("game", "dice")
	if game != "dice" && game != "towers" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown game"})
		return
	}

	info, err := h.gameEngine.GetSeedInfo(userID, game, c.Query("client_seed"))
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"round":   info,
	})
}

func (h *GameHandler) RotateSeed(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req struct {
		Game       string `json:"game" binding:"required"`
		ClientSeed string `json:"client_seed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if req.Game != "dice" && req.Game != "towers" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown game"})
		return
	}

	revealed, next, err := h.gameEngine.RotateSeed(userID, req.Game, req.ClientSeed)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"revealed": revealed,
		"round":    next,
	})
}

func (h *GameHandler) VerifyBet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	allowed, err := h.redisService.CheckRateLimit(userID, "verify", services.DefaultRateLimitCashout, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many verifications. Please wait."})
		return
	}

	proof, err := h.gameEngine.Verify(c.Request.Context(), userID, req.BetID)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"verification": proof,
	})
}
