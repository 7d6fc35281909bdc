package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/round"
)

type RoundHandler struct {
	engine *round.Engine
}

func NewRoundHandler(engine *round.Engine) *RoundHandler {
	return &RoundHandler{engine: engine}
}

func (h *RoundHandler) PlaceBet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, err := h.engine.PlaceBet(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": resp})
}

func (h *RoundHandler) CashOut(c *gin.Context) {
	userID := c.GetInt64("user_id")

	resp, err := h.engine.CashOut(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": resp})
}

// Snapshot serves the reconnect view of the live round.
func (h *RoundHandler) Snapshot(c *gin.Context) {
	snap, err := h.engine.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "round": snap})
}
