package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
	dbmodels "studygate-bot/internal/database/models"
	"studygate-bot/internal/money"
	"studygate-bot/pkg/config"
)

// NewPlanHandler creates a plan from
// "/newplan Title;Price;Description[;CategoryID[;GroupID]]".
func NewPlanHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		parts := strings.Split(commandArgs(update.Message.Text), ";")
		if len(parts) < 3 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Формат: /newplan Название;Цена;Описание[;ID категории[;ID группы]]",
			})
			return
		}

		price, err := money.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Некорректная цена. Пример: 50 или 49.90",
			})
			return
		}

		plan := &dbmodels.Plan{
			Title:       strings.TrimSpace(parts[0]),
			PriceCents:  price,
			Description: strings.TrimSpace(parts[2]),
			IsActive:    true,
		}
		if len(parts) > 3 {
			if id, err := strconv.ParseUint(strings.TrimSpace(parts[3]), 10, 32); err == nil && id != 0 {
				catID := uint(id)
				plan.CategoryID = &catID
			}
		}
		if len(parts) > 4 {
			if id, err := strconv.ParseInt(strings.TrimSpace(parts[4]), 10, 64); err == nil && id != 0 {
				plan.GroupID = &id
			}
		}

		if err := c.PlanRepo.Create(ctx, plan); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("✅ План #%d «%s» создан, цена %s.",
				plan.ID, plan.Title, money.Format(plan.PriceCents, config.Currency)),
		})
	}
}

// DelPlanHandler deactivates a plan; existing subscriptions keep running.
func DelPlanHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		id, err := strconv.ParseUint(commandArgs(update.Message.Text), 10, 32)
		if err != nil || id == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Формат: /delplan <id>"})
			return
		}

		if err := c.PlanRepo.SoftDelete(ctx, uint(id)); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("🗑 План #%d деактивирован.", id),
		})
	}
}

// PlansHandler lists every active plan with id, price and category.
func PlansHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		plans, err := c.PlanRepo.ListActive(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		if len(plans) == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Активных планов нет."})
			return
		}

		var sb strings.Builder
		sb.WriteString("📋 <b>Планы</b>\n\n")
		for _, p := range plans {
			sb.WriteString(fmt.Sprintf("#%d %s — %s", p.ID, p.Title, money.Format(p.PriceCents, config.Currency)))
			if p.CategoryID != nil {
				sb.WriteString(fmt.Sprintf(" (категория %d)", *p.CategoryID))
			}
			sb.WriteString("\n")
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      sb.String(),
			ParseMode: models.ParseModeHTML,
		})
	}
}
