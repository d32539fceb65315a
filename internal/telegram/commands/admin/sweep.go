package admin

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
)

// Manual triggers for the sweep actions, mirroring what the scheduler does
// on its own. Useful after downtime over a trigger moment.

func RunPaymentNotificationsHandler(c *container.AppContainer) bot.HandlerFunc {
	return runSweep("напоминаний об оплате", func(ctx context.Context) (int, error) {
		return c.Sweeper.SendRenewalReminders(ctx)
	})
}

func RunDeadlineNotificationsHandler(c *container.AppContainer) bot.HandlerFunc {
	return runSweep("напоминаний о дедлайне", func(ctx context.Context) (int, error) {
		return c.Sweeper.SendDeadlineReminders(ctx)
	})
}

func RunRemoveUnpaidHandler(c *container.AppContainer) bot.HandlerFunc {
	return runSweep("удалений неоплативших", func(ctx context.Context) (int, error) {
		return c.Sweeper.RemoveUnpaid(ctx)
	})
}

func runSweep(label string, fn func(context.Context) (int, error)) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		n, err := fn(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("✅ Выполнено %s: %d.", label, n),
		})
	}
}
