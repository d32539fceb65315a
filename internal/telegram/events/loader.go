package events

import (
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
	"studygate-bot/internal/telegram/events/groupadd"
)

func LoadEvents(b *bot.Bot, c *container.AppContainer) {
	b.RegisterHandlerMatchFunc(matchMyChatMember, groupadd.Handler(c))
}

func matchMyChatMember(update *models.Update) bool {
	return update.MyChatMember != nil
}
