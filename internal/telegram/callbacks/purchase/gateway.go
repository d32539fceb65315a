package purchase

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/container"
	"studygate-bot/internal/payments"
)

// PreCheckoutHandler confirms the checkout only when the payload matches a
// stored invoice. Everything else is declined before money moves.
func PreCheckoutHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		q := update.PreCheckoutQuery

		if err := c.Gateway.VerifyPayload(ctx, q.InvoicePayload); err != nil {
			c.Log.Warn("pre-checkout declined",
				zap.Int64("user_id", q.From.ID),
				zap.Error(err),
			)
			b.AnswerPreCheckoutQuery(ctx, &bot.AnswerPreCheckoutQueryParams{
				PreCheckoutQueryID: q.ID,
				OK:                 false,
				ErrorMessage:       "Счёт устарел. Сформируйте оплату заново.",
			})
			return
		}

		b.AnswerPreCheckoutQuery(ctx, &bot.AnswerPreCheckoutQueryParams{
			PreCheckoutQueryID: q.ID,
			OK:                 true,
		})
	}
}

// SuccessfulPaymentHandler finishes a card payment: it activates or renews
// the subscription and delivers the invite link.
func SuccessfulPaymentHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		pay := update.Message.SuccessfulPayment
		userID := update.Message.From.ID

		// The checkout flow remembered which group the plan unlocks; hand it
		// on as a hint before discarding the state. An expired flow just
		// falls back to the plan's own group or the default.
		var groupHint *int64
		if state, err := c.SessionManager.PeekFlow(ctx, userID); err == nil && state.GroupID != 0 {
			groupHint = &state.GroupID
		}
		c.SessionManager.ClearFlow(ctx, userID)

		res, err := c.Gateway.HandleSuccess(ctx, userID, pay.InvoicePayload, int64(pay.TotalAmount), groupHint)
		if err != nil {
			c.Log.Error("processing successful payment failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			text := "⚠️ Оплата получена, но при активации произошла ошибка. Напишите администратору."
			if errors.Is(err, payments.ErrInvoiceMismatch) || errors.Is(err, payments.ErrUnknownInvoice) {
				text = "⚠️ Оплата получена, но счёт не удалось сопоставить. Напишите администратору."
			}
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text})
			return
		}

		var text string
		switch {
		case res.InvitePending:
			text = "✅ Оплата прошла! Подписка активирована, но ссылку-приглашение сформировать не удалось. " +
				"Запросите новую ссылку в разделе «📑 Моя подписка»."
		case res.Renewal:
			text = "✅ Подписка «" + res.PlanTitle + "» продлена!\n\nНовая ссылка-приглашение (одноразовая):\n" + res.Invite
		default:
			text = "✅ Оплата прошла! Добро пожаловать в «" + res.PlanTitle + "».\n\nСсылка-приглашение (одноразовая):\n" + res.Invite
		}

		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text})
	}
}
