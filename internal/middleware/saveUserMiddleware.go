package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgbotModels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studygate-bot/internal/database/repositories"
)

// SaveUserMiddleware upserts every user the bot hears from. A referrer is
// captured only from a "/start ref<id>" deep link and only on first contact.
func SaveUserMiddleware(db *gorm.DB, logger *zap.Logger) bot.Middleware {
	userRepo := repositories.NewUserRepository(db)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *tgbotModels.Update) {
			var userID int64
			var username string
			var referrer *int64

			if update.Message != nil && update.Message.From != nil {
				userID = update.Message.From.ID
				username = update.Message.From.Username
				referrer = parseReferrer(update.Message.Text, userID)
			} else if update.CallbackQuery != nil {
				userID = update.CallbackQuery.From.ID
				username = update.CallbackQuery.From.Username
			} else if update.PreCheckoutQuery != nil {
				userID = update.PreCheckoutQuery.From.ID
				username = update.PreCheckoutQuery.From.Username
			}

			if userID != 0 {
				if err := userRepo.EnsureUser(ctx, userID, referrer, username); err != nil {
					logger.Error("failed to upsert user", zap.Int64("user_id", userID), zap.Error(err))
				}
			}

			next(ctx, b, update)
		}
	}
}

func parseReferrer(text string, userID int64) *int64 {
	if !strings.HasPrefix(text, "/start ref") {
		return nil
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(text, "/start ref"), 10, 64)
	if err != nil || id == 0 || id == userID {
		return nil
	}
	return &id
}
