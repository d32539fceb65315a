// Package subview shows the user's own subscriptions and re-issues invite
// links.
package subview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"studygate-bot/internal/container"
	"studygate-bot/internal/money"
	"studygate-bot/internal/period"
	"studygate-bot/internal/subscription"
	"studygate-bot/pkg/config"
	"studygate-bot/pkg/parser"
)

func Handler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		userID := update.CallbackQuery.From.ID
		chatID := update.CallbackQuery.Message.Message.Chat.ID
		messageID := update.CallbackQuery.Message.Message.ID

		infos, err := c.Manager.StatusByUser(ctx, userID)
		if err != nil {
			c.Log.Error("loading subscriptions failed", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		if len(infos) == 0 {
			text, button := parser.GetMessage("no-subscription", map[string]string{})
			b.EditMessageText(ctx, &bot.EditMessageTextParams{
				ChatID:      chatID,
				MessageID:   messageID,
				Text:        text,
				ReplyMarkup: button,
				ParseMode:   models.ParseModeHTML,
			})
			return
		}

		now := time.Now().In(config.Location)

		var sb strings.Builder
		sb.WriteString("📑 <b>Мои подписки</b>\n\n")
		keyboard := make([][]models.InlineKeyboardButton, 0, len(infos)+1)
		for _, info := range infos {
			sub := info.Sub
			endDate := time.Unix(sub.EndTS, 0).In(config.Location).Format("02.01.2006")
			switch info.Status {
			case subscription.StatusPaid:
				sb.WriteString(fmt.Sprintf("✅ %s — оплачено, доступ до %s\n", sub.Plan.Title, endDate))
				keyboard = append(keyboard, []models.InlineKeyboardButton{{
					Text:         "🔗 Новая ссылка: " + sub.Plan.Title,
					CallbackData: "new_link:" + sub.ID,
				}})
			case subscription.StatusNeedsRenewal:
				sb.WriteString(fmt.Sprintf("⚠️ %s — требуется продление (доступ до %s)\n", sub.Plan.Title, endDate))
				if period.InPaymentWindow(now) {
					deadline := period.FirstDeadline(now)
					if now.After(deadline) {
						deadline = period.SecondDeadline(now)
					}
					sb.WriteString(fmt.Sprintf("⏳ Оплатите до %s\n", deadline.Format("02.01")))
				}
				keyboard = append(keyboard, []models.InlineKeyboardButton{{
					Text:         "🔄 Продлить: " + sub.Plan.Title,
					CallbackData: fmt.Sprintf("renew_plan:%d", sub.PlanID),
				}})
			default:
				sb.WriteString(fmt.Sprintf("❌ %s — истекла %s\n", sub.Plan.Title, endDate))
				keyboard = append(keyboard, []models.InlineKeyboardButton{{
					Text:         "💳 Оплатить: " + sub.Plan.Title,
					CallbackData: fmt.Sprintf("renew_plan:%d", sub.PlanID),
				}})
			}
		}
		if user, err := c.UserRepo.GetByID(ctx, userID); err == nil && user.CashbackCents > 0 {
			sb.WriteString(fmt.Sprintf("\n💰 Реферальный кэшбэк: %s\n",
				money.Format(user.CashbackCents, config.Currency)))
		}

		keyboard = append(keyboard, []models.InlineKeyboardButton{{Text: "⬅️ Назад", CallbackData: "start"}})

		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        sb.String(),
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
			ParseMode:   models.ParseModeHTML,
		})
	}
}

// NewLinkHandler re-issues a one-time invite for a paid subscription.
func NewLinkHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})

		subID := strings.TrimPrefix(update.CallbackQuery.Data, "new_link:")
		userID := update.CallbackQuery.From.ID

		link, err := c.Manager.IssueFreshCredential(ctx, subID, userID, config.IsAdmin(userID))
		if err != nil {
			text := "Не удалось сформировать ссылку, попробуйте позже."
			switch {
			case errors.Is(err, subscription.ErrNotFound):
				text = "Подписка не найдена."
			case errors.Is(err, subscription.ErrNotAllowed):
				text = "Эта подписка принадлежит другому пользователю."
			case errors.Is(err, subscription.ErrBotNotAdmin):
				text = "Бот не является администратором группы. Сообщите администратору."
			default:
				c.Log.Error("issuing fresh invite failed", zap.String("sub_id", subID), zap.Error(err))
			}
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text})
			return
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   "🔗 Новая ссылка-приглашение (одноразовая, действует 7 дней):\n" + link,
		})
	}
}
