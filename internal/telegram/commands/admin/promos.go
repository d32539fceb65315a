package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/container"
	dbmodels "studygate-bot/internal/database/models"
	"studygate-bot/internal/money"
	"studygate-bot/pkg/config"
)

// NewPromoHandler creates a promo code:
// "/newpromo КОД|gen;percent|fixed;значение[;макс. использований[;дней]]".
// "gen" generates a random code.
func NewPromoHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		parts := strings.Split(commandArgs(update.Message.Text), ";")
		if len(parts) < 3 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Формат: /newpromo КОД|gen;percent|fixed;значение[;макс[;дней]]",
			})
			return
		}

		promo := &dbmodels.PromoCode{IsActive: true}

		kind := strings.TrimSpace(parts[1])
		switch kind {
		case "percent":
			pct, err := strconv.Atoi(strings.TrimSpace(parts[2]))
			if err != nil || pct <= 0 || pct > 100 {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Процент должен быть от 1 до 100."})
				return
			}
			promo.DiscountPercent = &pct
		case "fixed":
			cents, err := money.Parse(strings.TrimSpace(parts[2]))
			if err != nil {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Некорректная сумма скидки."})
				return
			}
			promo.DiscountFixedCents = &cents
		default:
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Тип скидки: percent или fixed."})
			return
		}

		if len(parts) > 3 {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[3])); err == nil && n > 0 {
				promo.MaxUses = &n
			}
		}
		if len(parts) > 4 {
			if days, err := strconv.Atoi(strings.TrimSpace(parts[4])); err == nil && days > 0 {
				expires := time.Now().In(config.Location).AddDate(0, 0, days).Unix()
				promo.ExpiresTS = &expires
			}
		}

		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		var err error
		if code == "GEN" {
			promo, err = c.Promo.Generate(ctx, promo)
		} else {
			exists, checkErr := c.PromoRepo.CodeExists(ctx, code)
			if checkErr != nil {
				replyError(ctx, b, chatID, checkErr)
				return
			}
			if exists {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Такой код уже существует."})
				return
			}
			promo.Code = code
			err = c.PromoRepo.Create(ctx, promo)
		}
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("✅ Промокод <code>%s</code> создан.", promo.Code),
			ParseMode: models.ParseModeHTML,
		})
	}
}

// PromosHandler lists every promo code with its state.
func PromosHandler(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		promos, err := c.PromoRepo.List(ctx)
		if err != nil {
			replyError(ctx, b, chatID, err)
			return
		}
		if len(promos) == 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Промокодов нет."})
			return
		}

		var sb strings.Builder
		sb.WriteString("🎟 <b>Промокоды</b>\n\n")
		for _, p := range promos {
			sb.WriteString(fmt.Sprintf("<code>%s</code> — %s, использован %d", p.Code, describeDiscount(&p), p.UsedCount))
			if p.MaxUses != nil {
				sb.WriteString(fmt.Sprintf("/%d", *p.MaxUses))
			}
			if !p.IsActive {
				sb.WriteString(" (выключен)")
			}
			if p.ExpiresTS != nil {
				sb.WriteString(" до " + time.Unix(*p.ExpiresTS, 0).In(config.Location).Format("02.01.2006"))
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

func describeDiscount(p *dbmodels.PromoCode) string {
	if p.DiscountPercent != nil {
		return fmt.Sprintf("-%d%%", *p.DiscountPercent)
	}
	if p.DiscountFixedCents != nil {
		return "-" + money.Format(*p.DiscountFixedCents, config.Currency)
	}
	return "без скидки"
}
