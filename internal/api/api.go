// Package api exposes a small admin REST surface next to the bot: health,
// token auth, and read-only views over plans, groups, payments and stats.
package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studygate-bot/internal/api/routes"
	"studygate-bot/internal/container"
	"studygate-bot/pkg/config"
)

func StartApi(db *gorm.DB, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := container.NewAppContainer(db, logger)
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, app)

	srv := &http.Server{
		Addr:    config.APIAddr,
		Handler: router,
	}

	go func() {
		logger.Info("admin API listening", zap.String("addr", config.APIAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down admin API")

	return srv.Shutdown(context.Background())
}
