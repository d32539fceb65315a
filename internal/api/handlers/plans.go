package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studygate-bot/internal/container"
)

func ListPlansHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := app.PlanRepo.ListActive(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list plans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"plans": plans})
	}
}

func ListGroupsHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := app.GroupRepo.List(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list groups"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"groups": groups})
	}
}
