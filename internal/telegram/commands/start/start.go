package start

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/pkg/parser"
)

func Handler() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		text, button := parser.GetMessage("start", map[string]string{
			"firstName": update.Message.From.FirstName,
		})

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   models.ParseModeHTML,
		})
	}
}

// CallbackHandler renders the same menu in place when the user presses a
// back button.
func CallbackHandler() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		text, button := parser.GetMessage("start", map[string]string{
			"firstName": update.CallbackQuery.From.FirstName,
		})

		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      update.CallbackQuery.Message.Message.Chat.ID,
			MessageID:   update.CallbackQuery.Message.Message.ID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   models.ParseModeHTML,
		})
	}
}
