// Package admin holds the operator commands. Every handler here is
// registered behind the admin middleware.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
)

// GroupsHandler lists the managed groups with buttons to pick the default
// one. The default group hosts every plan without an explicit group binding.
func GroupsHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		groups, err := c.GroupRepo.List(ctx)
		if err != nil {
			replyError(ctx, b, update.Message.Chat.ID, err)
			return
		}
		if len(groups) == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "Управляемых групп пока нет. Добавьте бота в группу администратором.",
			})
			return
		}

		var sb strings.Builder
		sb.WriteString("🏫 <b>Управляемые группы</b>\n\n")
		keyboard := make([][]models.InlineKeyboardButton, 0, len(groups))
		for _, g := range groups {
			mark := ""
			if g.IsDefault {
				mark = " ⭐️"
			}
			sb.WriteString(fmt.Sprintf("• %s (<code>%d</code>)%s\n", g.Title, g.ChatID, mark))
			keyboard = append(keyboard, []models.InlineKeyboardButton{{
				Text:         "Сделать основной: " + g.Title,
				CallbackData: fmt.Sprintf("set_default:%d", g.ChatID),
			}})
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        sb.String(),
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
		})
	}
}

// SetDefaultHandler reacts to the set_default:<chatID> button.
func SetDefaultHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := parseInt64Arg(update.CallbackQuery.Data, "set_default:")
		if chatID == 0 {
			return
		}

		answer(ctx, b, update)

		if err := c.GroupRepo.SetDefault(ctx, chatID); err != nil {
			replyError(ctx, b, update.CallbackQuery.Message.Message.Chat.ID, err)
			return
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.CallbackQuery.Message.Message.Chat.ID,
			Text:   fmt.Sprintf("⭐️ Группа %d теперь основная.", chatID),
		})
	}
}
