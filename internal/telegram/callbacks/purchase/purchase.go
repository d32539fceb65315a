// Package purchase drives the payment flow from the plan card to a
// completed card payment or the start of the manual receipt flow.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/container"
	dbmodels "studygate-bot/internal/database/models"
	"studygate-bot/internal/money"
	"studygate-bot/internal/promo"
	"studygate-bot/pkg/config"
	"studygate-bot/pkg/parser"
)

// BuyHandler handles both buy_full:<planID> and renew_plan:<planID>: it
// stores the flow state and offers the active payment methods.
func BuyHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		data := update.CallbackQuery.Data
		mode := dbmodels.PaymentModeNew
		flow := cache.FlowNewSubscription
		prefix := "buy_full:"
		if strings.HasPrefix(data, "renew_plan:") {
			mode = dbmodels.PaymentModeRenewal
			flow = cache.FlowRenewal
			prefix = "renew_plan:"
		}

		id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 32)
		if err != nil {
			return
		}

		userID := update.CallbackQuery.From.ID
		plan, err := c.PlanRepo.GetByID(ctx, uint(id))
		if err != nil {
			c.Log.Error("loading plan for purchase failed", zap.Error(err))
			return
		}

		state := cache.FlowState{
			Flow:       flow,
			PlanID:     plan.ID,
			Title:      plan.Title,
			PriceCents: plan.PriceCents,
			Mode:       mode,
		}
		if plan.GroupID != nil {
			state.GroupID = *plan.GroupID
		}
		if err := c.SessionManager.SetFlow(ctx, userID, state); err != nil {
			c.Log.Error("saving purchase flow failed", zap.Error(err))
			return
		}

		sendMethodChoice(ctx, b, c, userID, plan.Title, plan.PriceCents)
	}
}

// PromoEntryHandler starts promo code entry for buy_promo:<planID>.
func PromoEntryHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		id, err := strconv.ParseUint(strings.TrimPrefix(update.CallbackQuery.Data, "buy_promo:"), 10, 32)
		if err != nil {
			return
		}

		userID := update.CallbackQuery.From.ID
		plan, err := c.PlanRepo.GetByID(ctx, uint(id))
		if err != nil {
			c.Log.Error("loading plan for promo failed", zap.Error(err))
			return
		}

		state := cache.FlowState{
			Flow:       cache.FlowPromoEntry,
			PlanID:     plan.ID,
			Title:      plan.Title,
			PriceCents: plan.PriceCents,
			Mode:       dbmodels.PaymentModeNew,
		}
		if plan.GroupID != nil {
			state.GroupID = *plan.GroupID
		}
		if err := c.SessionManager.SetFlow(ctx, userID, state); err != nil {
			c.Log.Error("saving promo flow failed", zap.Error(err))
			return
		}

		text, button := parser.GetMessage("promo-ask-code", map[string]string{})
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      userID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   models.ParseModeHTML,
		})
	}
}

// CancelPromoHandler drops the promo entry flow.
func CancelPromoHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
		userID := update.CallbackQuery.From.ID
		c.SessionManager.ClearFlow(ctx, userID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Ввод промокода отменён.",
		})
	}
}

// MethodHandler reacts to pm:<methodID>: a card method sends a gateway
// invoice, a manual method shows the transfer instructions.
func MethodHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		id, err := strconv.ParseUint(strings.TrimPrefix(update.CallbackQuery.Data, "pm:"), 10, 32)
		if err != nil {
			return
		}

		userID := update.CallbackQuery.From.ID
		state, err := c.SessionManager.PeekFlow(ctx, userID)
		if err != nil || (state.Flow != cache.FlowNewSubscription && state.Flow != cache.FlowRenewal) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: userID,
				Text:   "Сессия оплаты истекла. Начните заново из раздела «📋 Группы обучения».",
			})
			return
		}

		method, err := c.MethodRepo.GetByID(ctx, uint(id))
		if err != nil || !method.IsActive {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: userID,
				Text:   "Этот способ оплаты сейчас недоступен.",
			})
			return
		}

		switch method.Type {
		case dbmodels.PaymentMethodCard:
			sendInvoice(ctx, b, c, userID, state)
		case dbmodels.PaymentMethodManual:
			state.Flow = cache.FlowManualPayment
			state.Step = cache.ManualStepInstructions
			if err := c.SessionManager.SetFlow(ctx, userID, *state); err != nil {
				c.Log.Error("saving manual flow failed", zap.Error(err))
				return
			}
			text, button := parser.GetMessage("manual-instructions", map[string]string{
				"price":   money.Format(state.PriceCents, config.Currency),
				"details": method.Details,
			})
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:      userID,
				Text:        text,
				ReplyMarkup: button,
				ParseMode:   models.ParseModeHTML,
			})
		}
	}
}

// PromoCodeInput validates the typed code and, when eligible, re-enters the
// payment method choice with the discount applied.
func PromoCodeInput(ctx context.Context, b *bot.Bot, c *container.AppContainer, userID int64, text string) {
	state, err := c.SessionManager.GetFlow(ctx, userID, cache.FlowPromoEntry)
	if err != nil {
		return
	}

	code := strings.ToUpper(strings.TrimSpace(text))
	promoCode, err := c.Promo.Validate(ctx, code)
	if err == nil {
		err = c.Promo.Eligibility(ctx, promoCode, userID)
	}
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   promoErrorText(err),
		})
		return
	}

	newPrice, message, err := c.Promo.Apply(state.PriceCents, promoCode)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   promoErrorText(err),
		})
		return
	}

	state.Flow = cache.FlowNewSubscription
	state.PriceCents = newPrice
	state.PromoID = &promoCode.ID
	if err := c.SessionManager.SetFlow(ctx, userID, *state); err != nil {
		c.Log.Error("saving discounted flow failed", zap.Error(err))
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    userID,
		Text:      message,
		ParseMode: models.ParseModeHTML,
	})
	sendMethodChoice(ctx, b, c, userID, state.Title, newPrice)
}

func sendMethodChoice(ctx context.Context, b *bot.Bot, c *container.AppContainer, userID int64, title string, priceCents int64) {
	methods, err := c.MethodRepo.ListActive(ctx)
	if err != nil {
		c.Log.Error("listing payment methods failed", zap.Error(err))
		return
	}
	if len(methods) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Оплата временно недоступна, попробуйте позже.",
		})
		return
	}

	keyboard := make([][]models.InlineKeyboardButton, 0, len(methods))
	for _, m := range methods {
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         m.Name,
			CallbackData: fmt.Sprintf("pm:%d", m.ID),
		}})
	}

	text, _ := parser.GetMessage("choose-payment-method", map[string]string{
		"title": title,
		"price": money.Format(priceCents, config.Currency),
	})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
		ParseMode:   models.ParseModeHTML,
	})
}

func sendInvoice(ctx context.Context, b *bot.Bot, c *container.AppContainer, userID int64, state *cache.FlowState) {
	payload, err := c.Gateway.PrepareInvoice(ctx, userID, state.PlanID, state.PriceCents, state.PromoID, state.Mode)
	if err != nil {
		c.Log.Error("preparing invoice failed", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "Не удалось сформировать счёт, попробуйте позже.",
		})
		return
	}

	_, err = b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:        userID,
		Title:         state.Title,
		Description:   "Подписка на месяц: " + state.Title,
		Payload:       payload,
		ProviderToken: config.ProviderToken,
		Currency:      config.Currency,
		Prices: []models.LabeledPrice{
			{Label: state.Title, Amount: int(state.PriceCents)},
		},
	})
	if err != nil {
		c.Log.Error("sending invoice failed", zap.Error(err))
	}
}

func promoErrorText(err error) string {
	switch {
	case errors.Is(err, promo.ErrNotFound):
		return "❌ Промокод не найден."
	case errors.Is(err, promo.ErrAlreadyUsed):
		return "❌ Вы уже использовали этот промокод."
	case errors.Is(err, promo.ErrInactive):
		return "❌ Промокод выключен."
	case errors.Is(err, promo.ErrExhausted):
		return "❌ Лимит использований промокода исчерпан."
	case errors.Is(err, promo.ErrExpired):
		return "❌ Срок действия промокода истёк."
	default:
		return "❌ Промокод не может быть применён."
	}
}
