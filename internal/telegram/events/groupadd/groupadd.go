// Package groupadd tracks where the bot is installed. Adding the bot to a
// group registers it as a managed group; removing the bot unregisters it.
package groupadd

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/container"
	"studygate-bot/internal/telegram/logs"
)

func Handler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ev := update.MyChatMember
		chat := ev.Chat

		if chat.Type != "group" && chat.Type != "supergroup" {
			return
		}

		switch ev.NewChatMember.Type {
		case models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
			if err := c.GroupRepo.Add(ctx, chat.ID, chat.Title, string(chat.Type)); err != nil {
				c.Log.Error("registering managed group failed",
					zap.Int64("chat_id", chat.ID),
					zap.Error(err),
				)
				return
			}
			c.Log.Info("managed group registered",
				zap.Int64("chat_id", chat.ID),
				zap.String("title", chat.Title),
			)
			logs.NotifyAdmins(ctx, b, fmt.Sprintf(
				"🏫 Бот добавлен в группу «%s» (<code>%d</code>).\nНазначьте его администратором и при необходимости сделайте группу основной через /groups.",
				chat.Title, chat.ID,
			), nil)
		case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
			if err := c.GroupRepo.Remove(ctx, chat.ID); err != nil {
				c.Log.Error("unregistering managed group failed",
					zap.Int64("chat_id", chat.ID),
					zap.Error(err),
				)
				return
			}
			logs.NotifyAdmins(ctx, b, fmt.Sprintf(
				"🏫 Бот удалён из группы «%s» (<code>%d</code>), группа больше не управляется.",
				chat.Title, chat.ID,
			), nil)
		}
	}
}
