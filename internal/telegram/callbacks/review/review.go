// Package review handles the admin decision on manual payment tickets.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/container"
	"studygate-bot/internal/payments"
)

func Handler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		data := update.CallbackQuery.Data
		approve := strings.HasPrefix(data, "approve_payment:")
		ticketID := strings.TrimPrefix(strings.TrimPrefix(data, "approve_payment:"), "reject_payment:")
		adminID := update.CallbackQuery.From.ID

		res, err := c.Manual.Review(ctx, ticketID, adminID, approve)
		if err != nil {
			text := "Ошибка при обработке заявки."
			if errors.Is(err, payments.ErrTicketNotFound) {
				text = "Заявка уже обработана или не найдена."
			} else {
				c.Log.Error("manual review failed",
					zap.String("ticket_id", ticketID),
					zap.Error(err),
				)
			}
			b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
				CallbackQueryID: update.CallbackQuery.ID,
				Text:            text,
				ShowAlert:       true,
			})
			return
		}

		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            decisionLabel(approve),
		})

		// Strip the buttons so the ticket cannot be acted on twice from a
		// stale admin message.
		msg := update.CallbackQuery.Message.Message
		b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
		})

		notifyUser(ctx, b, res)
	}
}

func notifyUser(ctx context.Context, b *bot.Bot, res *payments.ReviewResult) {
	var text string
	switch {
	case !res.Approved:
		text = "❌ Ваша оплата не подтверждена. Проверьте чек и попробуйте ещё раз или свяжитесь с администратором."
	case res.InvitePending:
		text = "✅ Оплата подтверждена! Подписка активирована, но ссылку-приглашение сформировать не удалось. " +
			"Запросите новую ссылку в разделе «📑 Моя подписка»."
	default:
		text = "✅ Оплата подтверждена!\n\nСсылка-приглашение (одноразовая):\n" + res.Invite
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: res.Ticket.UserID,
		Text:   text,
	})
}

func decisionLabel(approve bool) string {
	if approve {
		return "Оплата подтверждена"
	}
	return "Оплата отклонена"
}
