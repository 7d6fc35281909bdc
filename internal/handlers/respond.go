package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
)

// respondError maps the game error taxonomy onto HTTP statuses. Internal
// errors are logged and surfaced without detail.
func respondError(c *gin.Context, err error) {
	switch models.KindOf(err) {
	case models.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.KindInsufficientFunds:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case models.KindState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
