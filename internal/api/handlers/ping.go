package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/container"
)

func PingHandler(app *container.AppContainer) gin.HandlerFunc {
	return func(g *gin.Context) {
		res := map[string]any{
			"ping": "pong",
		}
		if err := cache.HealthCheck(g); err != nil {
			res["redis"] = "down"
		} else {
			res["redis"] = "ok"
		}
		g.JSON(http.StatusOK, res)
	}
}
