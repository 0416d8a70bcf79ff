package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashdash-casino-backend/internal/models"
	"cashdash-casino-backend/internal/services"
)

type AuthHandler struct {
	redisService *services.RedisService
	jwtService   *services.JWTService
}

func NewAuthHandler(redisService *services.RedisService, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		redisService: redisService,
		jwtService:   jwtService,
	}
}

// Login opens a session for the given player and hands back a bearer
// token. There is no password check: accounts are provisioned elsewhere
// and this backend only deals in play-money wallets.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		UserID   int64  `json:"user_id" binding:"required"`
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	now := time.Now()
	session := &models.UserSession{
		ID:        req.UserID,
		SessionID: uuid.New().String(),
		User: models.User{
			ID:        req.UserID,
			Username:  req.Username,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt:    now,
		LastAccessed: now,
	}

	if err := h.redisService.StoreUserSession(session, services.TTLUserSession); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID, session.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	// Materialize the wallet so the first bet never races wallet creation.
	if _, err := h.redisService.GetWallet(req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"session_id": session.SessionID,
		"user":       session.User,
	})
}
