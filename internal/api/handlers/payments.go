package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studygate-bot/internal/container"
)

func ListPendingPaymentsHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tickets, err := app.PayRepo.ListPendingManual(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list pending payments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pending": tickets})
	}
}
