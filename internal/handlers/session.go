package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/session"
)

type SessionHandler struct {
	mines     *session.Mines
	blackjack *session.Blackjack
}

func NewSessionHandler(mines *session.Mines, blackjack *session.Blackjack) *SessionHandler {
	return &SessionHandler{mines: mines, blackjack: blackjack}
}

func (h *SessionHandler) StartMines(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.MinesStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.mines.Start(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

func (h *SessionHandler) RevealMines(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.MinesRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.mines.Reveal(c.Request.Context(), userID, req.SessionID, req.Position)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

func (h *SessionHandler) CashOutMines(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.MinesCashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.mines.CashOut(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

func (h *SessionHandler) StartBlackjack(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.BlackjackStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.blackjack.Start(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

func (h *SessionHandler) HitBlackjack(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.BlackjackActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.blackjack.Hit(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

func (h *SessionHandler) StandBlackjack(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.BlackjackActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, err := h.blackjack.Stand(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}
