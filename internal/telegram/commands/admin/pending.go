package admin

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
	"studygate-bot/internal/money"
	"studygate-bot/pkg/config"
)

// PendingHandler re-sends every pending manual payment ticket with its
// receipt and review buttons.
func PendingHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		tickets, err := c.PayRepo.ListPendingManual(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		if len(tickets) == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Заявок на проверку нет."})
			return
		}

		for i := range tickets {
			t := &tickets[i]
			caption := fmt.Sprintf(
				"🧾 Заявка <code>%s</code>\nПользователь: %d\nПлан: %s\nСумма: %s\nИмя: %s",
				t.ID, t.UserID, t.Plan.Title, money.Format(t.AmountCents, config.Currency), t.FullName,
			)
			keyboard := &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{{
					{Text: "✅ Подтвердить", CallbackData: "approve_payment:" + t.ID},
					{Text: "❌ Отклонить", CallbackData: "reject_payment:" + t.ID},
				}},
			}

			if t.ReceiptFileID != "" {
				b.SendPhoto(ctx, &bot.SendPhotoParams{
					ChatID:      chatID,
					Photo:       &models.InputFileString{Data: t.ReceiptFileID},
					Caption:     caption,
					ParseMode:   models.ParseModeHTML,
					ReplyMarkup: keyboard,
				})
			} else {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID:      chatID,
					Text:        caption,
					ParseMode:   models.ParseModeHTML,
					ReplyMarkup: keyboard,
				})
			}
		}
	}
}
