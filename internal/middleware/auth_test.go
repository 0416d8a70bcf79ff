package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cashdash-casino-backend/internal/config"
	"cashdash-casino-backend/internal/middleware"
	"cashdash-casino-backend/internal/services"
)

func setupRateLimitRouter(t *testing.T, userID int64) (*gin.Engine, *services.RedisService) {
	t.Helper()

	cfg := &config.Config{
		RedisURL: "localhost:6379",
		RedisDB:  0,
	}
	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { redisService.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.Use(middleware.RateLimitMiddleware(redisService))
	router.POST("/api/games/towers/cashout", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.GET("/api/games/balance", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return router, redisService
}

func TestRateLimitMiddleware(t *testing.T) {
	userID := int64(777701)
	router, redisService := setupRateLimitRouter(t, userID)
	redisService.ClearRateLimit(userID, "/api/games/towers/cashout")

	for i := 0; i < services.DefaultRateLimitCashout; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/games/towers/cashout", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/games/towers/cashout", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("request over the limit should get 429, got %d", w.Code)
	}

	// Unlimited paths never trip.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/games/balance", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("balance reads should not be rate limited, got %d", w.Code)
	}

	redisService.ClearRateLimit(userID, "/api/games/towers/cashout")
}
