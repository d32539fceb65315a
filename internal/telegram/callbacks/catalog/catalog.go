// Package catalog renders the plan storefront: category list, plans in a
// category, and the plan card with buy buttons.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/container"
	dbmodels "studygate-bot/internal/database/models"
	"studygate-bot/internal/money"
	"studygate-bot/pkg/config"
	"studygate-bot/pkg/parser"
)

func Handler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
		chatID := update.CallbackQuery.Message.Message.Chat.ID
		messageID := update.CallbackQuery.Message.Message.ID

		cats, err := c.CatRepo.ListActive(ctx)
		if err != nil {
			c.Log.Error("listing categories failed", zap.Error(err))
			return
		}

		// Without categories the catalog is a flat plan list.
		if len(cats) == 0 {
			plans, err := c.PlanRepo.ListActive(ctx)
			if err != nil {
				c.Log.Error("listing plans failed", zap.Error(err))
				return
			}
			if len(plans) == 0 {
				text, button := parser.GetMessage("catalog-empty", map[string]string{})
				b.EditMessageText(ctx, &bot.EditMessageTextParams{
					ChatID:      chatID,
					MessageID:   messageID,
					Text:        text,
					ReplyMarkup: button,
					ParseMode:   models.ParseModeHTML,
				})
				return
			}
			editPlanList(ctx, b, chatID, messageID, plans, "start")
			return
		}

		keyboard := make([][]models.InlineKeyboardButton, 0, len(cats)+1)
		for _, cat := range cats {
			keyboard = append(keyboard, []models.InlineKeyboardButton{{
				Text:         cat.Name,
				CallbackData: fmt.Sprintf("cat:%d", cat.ID),
			}})
		}
		keyboard = append(keyboard, []models.InlineKeyboardButton{{Text: "⬅️ Назад", CallbackData: "start"}})

		text, _ := parser.GetMessage("catalog-header", map[string]string{})
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
			ParseMode:   models.ParseModeHTML,
		})
	}
}

// CategoryHandler shows the plans of one category.
func CategoryHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		id, err := strconv.ParseUint(strings.TrimPrefix(update.CallbackQuery.Data, "cat:"), 10, 32)
		if err != nil {
			return
		}

		plans, err := c.PlanRepo.ListActiveByCategory(ctx, uint(id))
		if err != nil {
			c.Log.Error("listing category plans failed", zap.Error(err))
			return
		}

		editPlanList(ctx, b,
			update.CallbackQuery.Message.Message.Chat.ID,
			update.CallbackQuery.Message.Message.ID,
			plans, "catalog")
	}
}

// PlanHandler shows one plan card with its media and buy buttons.
func PlanHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		id, err := strconv.ParseUint(strings.TrimPrefix(update.CallbackQuery.Data, "plan:"), 10, 32)
		if err != nil {
			return
		}

		plan, err := c.PlanRepo.GetByID(ctx, uint(id))
		if err != nil {
			c.Log.Error("loading plan failed", zap.Error(err))
			return
		}

		chatID := update.CallbackQuery.Message.Message.Chat.ID
		price := money.Format(plan.PriceCents, config.Currency)
		text := fmt.Sprintf(
			"📚 <b>%s</b>\n\n%s\n\n💰 Стоимость: <b>%s в месяц</b>\nДоступ действует до 5 числа следующего месяца.",
			plan.Title, plan.Description, price,
		)
		keyboard := &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: "💳 Оплатить " + price, CallbackData: fmt.Sprintf("buy_full:%d", plan.ID)}},
				{{Text: "🎟 У меня есть промокод", CallbackData: fmt.Sprintf("buy_promo:%d", plan.ID)}},
				{{Text: "⬅️ Назад", CallbackData: "catalog"}},
			},
		}

		if plan.MediaFileID != "" && plan.MediaType == "photo" {
			b.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:      chatID,
				Photo:       &models.InputFileString{Data: plan.MediaFileID},
				Caption:     text,
				ParseMode:   models.ParseModeHTML,
				ReplyMarkup: keyboard,
			})
			return
		}

		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   update.CallbackQuery.Message.Message.ID,
			Text:        text,
			ReplyMarkup: keyboard,
			ParseMode:   models.ParseModeHTML,
		})
	}
}

func editPlanList(ctx context.Context, b *bot.Bot, chatID int64, messageID int, plans []dbmodels.Plan, backTo string) {
	if len(plans) == 0 {
		text, button := parser.GetMessage("catalog-empty", map[string]string{})
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   models.ParseModeHTML,
		})
		return
	}

	keyboard := make([][]models.InlineKeyboardButton, 0, len(plans)+1)
	for _, p := range plans {
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s — %s", p.Title, money.Format(p.PriceCents, config.Currency)),
			CallbackData: fmt.Sprintf("plan:%d", p.ID),
		}})
	}
	keyboard = append(keyboard, []models.InlineKeyboardButton{{Text: "⬅️ Назад", CallbackData: backTo}})

	text, _ := parser.GetMessage("catalog-header", map[string]string{})
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
		ParseMode:   models.ParseModeHTML,
	})
}
