package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItzYourBread/cashmash-sub000/internal/middleware"
)

// AuthHandler issues development tokens. Real identity lives behind an
// external auth provider; this endpoint stands in for it.
type AuthHandler struct {
	jwtService *middleware.JWTService
}

func NewAuthHandler(jwtService *middleware.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
