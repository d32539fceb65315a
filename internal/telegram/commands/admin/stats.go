package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
	"studygate-bot/internal/period"
	"studygate-bot/internal/subscription"
	"studygate-bot/pkg/config"
)

// SubListHandler shows the active subscription roster and how many of them
// are paid for the running month.
func SubListHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		now := time.Now().In(config.Location)
		cur := period.Current(now)

		total, err := c.SubRepo.CountActive(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		paid, err := c.SubRepo.CountPaidForPeriod(ctx, int(cur.Month), cur.Year, now.Unix())
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		subs, err := c.SubRepo.ListActive(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("📊 <b>Подписки</b>\n\nАктивных: %d\nОплачено за %02d.%d: %d\n\n",
			total, cur.Month, cur.Year, paid))
		for i := range subs {
			if i >= 30 {
				sb.WriteString(fmt.Sprintf("… и ещё %d\n", len(subs)-i))
				break
			}
			s := &subs[i]
			mark := "❌"
			if subscription.IsPaidFor(s, cur, now.Unix()) {
				mark = "✅"
			}
			sb.WriteString(fmt.Sprintf("%s %d — %s, до %s\n",
				mark, s.UserID, s.Plan.Title, time.Unix(s.EndTS, 0).In(config.Location).Format("02.01.2006")))
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      sb.String(),
			ParseMode: models.ParseModeHTML,
		})
	}
}

// UsersHandler shows the user count and recent referral cashback owners.
func UsersHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		count, err := c.UserRepo.Count(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		users, err := c.UserRepo.List(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("👥 Пользователей: %d\n\nС кэшбэком:\n", count))
		shown := 0
		for i := range users {
			u := &users[i]
			if u.CashbackCents == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("• %d (@%s) — %d коп.\n", u.UserID, u.Username, u.CashbackCents))
			shown++
			if shown >= 20 {
				break
			}
		}
		if shown == 0 {
			sb.WriteString("пока никого\n")
		}

		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
	}
}
