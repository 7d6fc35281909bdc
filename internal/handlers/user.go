package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
)

type UserHandler struct {
	ledger *ledger.Ledger
}

func NewUserHandler(l *ledger.Ledger) *UserHandler {
	return &UserHandler{ledger: l}
}

func (h *UserHandler) GetBalance(c *gin.Context) {
	userID := c.GetInt64("user_id")

	account, err := h.ledger.Account(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": gin.H{
			"cash":                account.Balance,
			"chips":               account.Chips,
			"total_wagered":       account.TotalWagered,
			"total_won":           account.TotalWon,
			"losing_streak":       account.LosingStreak,
			"comeback_spins_left": account.ComebackSpinsLeft,
		},
	})
}

func (h *UserHandler) GetHistory(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	entries, err := h.ledger.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": entries,
		"count":   len(entries),
	})
}
