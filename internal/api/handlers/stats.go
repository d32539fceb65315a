package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studygate-bot/internal/container"
	"studygate-bot/internal/period"
	"studygate-bot/pkg/config"
)

func StatsHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().In(config.Location)
		cur := period.Current(now)

		users, err := app.UserRepo.Count(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		active, err := app.SubRepo.CountActive(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		paid, err := app.SubRepo.CountPaidForPeriod(c, int(cur.Month), cur.Year, now.Unix())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users":                users,
			"active_subscriptions": active,
			"paid_current_period":  paid,
			"period": gin.H{
				"month": int(cur.Month),
				"year":  cur.Year,
			},
		})
	}
}
