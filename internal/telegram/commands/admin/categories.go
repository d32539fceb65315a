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
)

// NewCatHandler creates a category: "/newcat Название[;Описание]".
func NewCatHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		args := commandArgs(update.Message.Text)
		if args == "" {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Формат: /newcat Название[;Описание]"})
			return
		}

		name, desc, _ := strings.Cut(args, ";")
		cat := &dbmodels.Category{
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(desc),
			IsActive:    true,
		}
		if err := c.CatRepo.Create(ctx, cat); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("✅ Категория #%d «%s» создана.", cat.ID, cat.Name),
		})
	}
}

// DelCatHandler asks how to treat the category's plans before deleting.
func DelCatHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		id, err := strconv.ParseUint(commandArgs(update.Message.Text), 10, 32)
		if err != nil || id == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Формат: /delcat <id>"})
			return
		}

		cat, err := c.CatRepo.GetByID(ctx, uint(id))
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		others, err := c.CatRepo.ListActive(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		keyboard := [][]models.InlineKeyboardButton{{{
			Text:         "🗑 Удалить вместе с планами",
			CallbackData: fmt.Sprintf("delcat_cascade:%d", cat.ID),
		}}}
		for _, o := range others {
			if o.ID == cat.ID {
				continue
			}
			keyboard = append(keyboard, []models.InlineKeyboardButton{{
				Text:         "➡️ Перенести планы в: " + o.Name,
				CallbackData: fmt.Sprintf("delcat_transfer:%d:%d", cat.ID, o.ID),
			}})
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        fmt.Sprintf("Удаление категории «%s». Что сделать с её планами?", cat.Name),
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
		})
	}
}

// DelCatCascadeHandler deactivates the category together with its plans.
func DelCatCascadeHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		id := parseUintArg(update.CallbackQuery.Data, "delcat_cascade:")
		if id == 0 {
			return
		}
		answer(ctx, b, update)

		chatID := update.CallbackQuery.Message.Message.Chat.ID
		if err := c.CatRepo.DeleteCascade(ctx, id); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("🗑 Категория #%d удалена вместе с планами.", id),
		})
	}
}

// DelCatTransferHandler moves the plans to another category, then deletes.
func DelCatTransferHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		parts := strings.Split(strings.TrimPrefix(update.CallbackQuery.Data, "delcat_transfer:"), ":")
		if len(parts) != 2 {
			return
		}
		src, err1 := strconv.ParseUint(parts[0], 10, 32)
		dst, err2 := strconv.ParseUint(parts[1], 10, 32)
		if err1 != nil || err2 != nil {
			return
		}
		answer(ctx, b, update)

		chatID := update.CallbackQuery.Message.Message.Chat.ID
		if err := c.CatRepo.DeleteTransfer(ctx, uint(src), uint(dst)); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("➡️ Планы перенесены в категорию #%d, категория #%d удалена.", dst, src),
		})
	}
}
