package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/outcome"
)

type SpinHandler struct {
	generator *outcome.Generator
}

func NewSpinHandler(generator *outcome.Generator) *SpinHandler {
	return &SpinHandler{generator: generator}
}

func (h *SpinHandler) Spin(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, err := h.generator.Spin(c.Request.Context(), userID, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *SpinHandler) Cards(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, err := h.generator.Cards(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
