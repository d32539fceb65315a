// Package manualflow walks the user through a bank-transfer payment:
// instructions, receipt photo, legal name, then a pending ticket for the
// admins to review.
package manualflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/container"
	"studygate-bot/internal/money"
	"studygate-bot/internal/payments"
	"studygate-bot/internal/telegram/logs"
	"studygate-bot/pkg/config"
	"studygate-bot/pkg/parser"
)

// ConfirmPaidHandler moves the flow to the receipt step.
func ConfirmPaidHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		userID := update.CallbackQuery.From.ID
		state, err := c.SessionManager.GetFlow(ctx, userID, cache.FlowManualPayment)
		if err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: userID,
				Text:   "Сессия оплаты истекла. Начните заново из раздела «📋 Группы обучения».",
			})
			return
		}

		state.Step = cache.ManualStepWaitingReceipt
		if err := c.SessionManager.SetFlow(ctx, userID, *state); err != nil {
			c.Log.Error("saving receipt step failed", zap.Error(err))
			return
		}

		text, _ := parser.GetMessage("manual-ask-receipt", map[string]string{})
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text})
	}
}

// CancelHandler aborts the manual flow.
func CancelHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
		userID := update.CallbackQuery.From.ID
		c.SessionManager.ClearFlow(ctx, userID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Оплата отменена.",
		})
	}
}

// ReceiptInput stores the receipt photo and asks for the legal name.
func ReceiptInput(ctx context.Context, b *bot.Bot, c *container.AppContainer, userID int64, photos []models.PhotoSize) {
	state, err := c.SessionManager.GetFlow(ctx, userID, cache.FlowManualPayment)
	if err != nil || state.Step != cache.ManualStepWaitingReceipt {
		return
	}

	// The last size is the largest rendition.
	state.ReceiptFileID = photos[len(photos)-1].FileID
	state.Step = cache.ManualStepWaitingName
	if err := c.SessionManager.SetFlow(ctx, userID, *state); err != nil {
		c.Log.Error("saving receipt failed", zap.Error(err))
		return
	}

	text, _ := parser.GetMessage("manual-ask-name", map[string]string{})
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text})
}

// NameInput files the ticket and notifies the admins with review buttons.
func NameInput(ctx context.Context, b *bot.Bot, c *container.AppContainer, userID int64, text string) {
	state, err := c.SessionManager.GetFlow(ctx, userID, cache.FlowManualPayment)
	if err != nil || state.Step != cache.ManualStepWaitingName {
		return
	}

	ticket, err := c.Manual.Submit(ctx, userID, state.PlanID, state.PriceCents, state.ReceiptFileID, text, state.PromoID)
	if err != nil {
		if errors.Is(err, payments.ErrNameTooShort) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: userID,
				Text:   "Имя слишком короткое. Отправьте имя и фамилию ещё раз.",
			})
			return
		}
		c.Log.Error("submitting manual payment failed", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Не удалось сохранить заявку, попробуйте позже.",
		})
		return
	}

	c.SessionManager.ClearFlow(ctx, userID)

	doneText, _ := parser.GetMessage("manual-submitted", map[string]string{})
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: doneText})

	caption := fmt.Sprintf(
		"🧾 <b>Новая оплата переводом</b>\n\nЗаявка: <code>%s</code>\nПользователь: %d\nПлан: %s\nСумма: %s\nИмя: %s",
		ticket.ID, userID, state.Title, money.Format(state.PriceCents, config.Currency), ticket.FullName,
	)
	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "✅ Подтвердить", CallbackData: "approve_payment:" + ticket.ID},
			{Text: "❌ Отклонить", CallbackData: "reject_payment:" + ticket.ID},
		}},
	}
	logs.NotifyAdminsPhoto(ctx, b, ticket.ReceiptFileID, caption, markup)
}
