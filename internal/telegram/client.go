package telegram

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/container"
	"studygate-bot/internal/middleware"
	"studygate-bot/internal/platform"
	"studygate-bot/internal/telegram/callbacks"
	"studygate-bot/internal/telegram/commands"
	"studygate-bot/internal/telegram/events"
	"studygate-bot/pkg/config"
)

// StartBot wires the application together and blocks until the process is
// interrupted.
func StartBot(db *gorm.DB, logger *zap.Logger) error {
	cache.GetRedisClient()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.SaveUserMiddleware(db, logger),
		),
	}

	app := container.NewAppContainer(db, logger)

	b, err := bot.New(config.TelegramBotToken, opts...)
	if err != nil {
		return err
	}

	client, err := platform.NewTelegram(ctx, b)
	if err != nil {
		return err
	}
	app.AttachPlatform(client)

	commands.LoadCommandHandlers(b, app)
	events.LoadEvents(b, app)
	callbacks.LoadCallbacksHandlers(b, app)

	go app.Sweeper.Run(ctx)

	logger.Info("bot started")

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gracefully")
		if err := cache.CloseRedis(); err != nil {
			logger.Error("closing redis failed", zap.Error(err))
		}
	}()

	b.Start(ctx)
	return nil
}
