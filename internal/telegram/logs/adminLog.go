// Package logs delivers operational notices to the configured admins.
package logs

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/pkg/config"
)

// NotifyAdmins sends the text to every configured admin. Delivery is best
// effort; a blocked admin chat must not break the calling flow.
func NotifyAdmins(ctx context.Context, b *bot.Bot, text string, markup *models.InlineKeyboardMarkup) {
	for _, adminID := range config.AdminIDs {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      adminID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
	}
}

// NotifyAdminsPhoto sends a photo with caption to every configured admin.
func NotifyAdminsPhoto(ctx context.Context, b *bot.Bot, fileID, caption string, markup *models.InlineKeyboardMarkup) {
	for _, adminID := range config.AdminIDs {
		b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      adminID,
			Photo:       &models.InputFileString{Data: fileID},
			Caption:     caption,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
	}
}
