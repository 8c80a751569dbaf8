package auth

import (
	"context"
	"time"

	"BlackJack/internal/bank"
	"BlackJack/internal/game/money"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Name string `json:"name" binding:"required"`
}

type Handler struct {
	secret   []byte
	bank     bank.Bank
	starting money.Money
}

// NewHandler 工厂方法：创建 handler
func NewHandler(secret []byte, b bank.Bank, starting money.Money) *Handler {
	return &Handler{secret: secret, bank: b, starting: starting}
}

// Login issues a guest session: a fresh opaque player id, a chip account
// with the starting balance, and a signed JWT the client presents on every
// authenticated call. Identity stays outside the game engine, which only
// ever sees the id.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "bad request"})
		return
	}

	playerID := uuid.NewString()

	if err := h.bank.CreateAccount(context.Background(), playerID, h.starting); err != nil {
		c.JSON(500, gin.H{"error": "account creation failed"})
		return
	}

	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": req.Name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtStr, err := token.SignedString(h.secret)
	if err != nil {
		c.JSON(500, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(200, gin.H{
		"playerId": playerID,
		"jwt":      jwtStr,
	})
}

// Balance returns the caller's current chip balance.
func (h *Handler) Balance(c *gin.Context) {
	playerID := c.GetString("playerID")
	bal, err := h.bank.LoadBalance(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"balance": bal})
}
