package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
)

// MethodsHandler lists payment methods with toggle buttons.
func MethodsHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		methods, err := c.MethodRepo.List(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		var sb strings.Builder
		sb.WriteString("💳 <b>Способы оплаты</b>\n\n")
		keyboard := make([][]models.InlineKeyboardButton, 0, len(methods))
		for _, m := range methods {
			state := "✅"
			if !m.IsActive {
				state = "🚫"
			}
			sb.WriteString(fmt.Sprintf("%s #%d %s (%s)\n", state, m.ID, m.Name, m.Type))
			keyboard = append(keyboard, []models.InlineKeyboardButton{{
				Text:         "Переключить: " + m.Name,
				CallbackData: fmt.Sprintf("toggle_pm:%d", m.ID),
			}})
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        sb.String(),
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
		})
	}
}

func ToggleMethodHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		id := parseUintArg(update.CallbackQuery.Data, "toggle_pm:")
		if id == 0 {
			return
		}
		answer(ctx, b, update)

		chatID := update.CallbackQuery.Message.Message.Chat.ID
		if err := c.MethodRepo.Toggle(ctx, id); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("🔁 Способ оплаты #%d переключён.", id),
		})
	}
}

// SetDetailsHandler updates the manual method's bank details:
// "/setdetails <id> <текст>".
func SetDetailsHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		args := commandArgs(update.Message.Text)
		idStr, details, found := strings.Cut(args, " ")
		id := parseUintArg(idStr, "")
		if !found || id == 0 || strings.TrimSpace(details) == "" {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Формат: /setdetails <id> <реквизиты>"})
			return
		}

		if err := c.MethodRepo.UpdateDetails(ctx, id, strings.TrimSpace(details)); err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("✅ Реквизиты способа #%d обновлены.", id),
		})
	}
}
