package main

import (
	"log"

	"go.uber.org/zap"

	"studygate-bot/internal/api"
	"studygate-bot/internal/database"
	"studygate-bot/internal/telegram"
	"studygate-bot/pkg/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db := database.InitDB()

	if config.APIAddr != "" {
		go func() {
			if err := api.StartApi(db, logger); err != nil {
				logger.Error("admin API stopped", zap.Error(err))
			}
		}()
	}

	if err := telegram.StartBot(db, logger); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}
