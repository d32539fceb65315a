// Package sweeper runs the recurring evaluation over all subscriptions:
// renewal reminders at the start of the month, deadline reminders before
// the cutoff, and revocation of unpaid access after it.
package sweeper

import (
	"context"
	"fmt"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/money"
	"studygate-bot/internal/period"
	"studygate-bot/internal/platform"

	"go.uber.org/zap"
)

// reminderCooldown guards against duplicate reminders after restarts.
const reminderCooldown = 20 * time.Hour

// removalBanDuration is how long the revocation ban lasts; it only needs to
// outlive the kick itself.
const removalBanDuration = 30 * time.Second

type Sweeper struct {
	subs     *repositories.SubscriptionRepository
	client   platform.Client
	currency string
	loc      *time.Location
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger

	// lastFired de-duplicates wall-clock triggers within the same day.
	lastFired map[string]string
}

func New(
	subs *repositories.SubscriptionRepository,
	client platform.Client,
	currency string,
	loc *time.Location,
	logger *zap.Logger,
) *Sweeper {
	s := &Sweeper{
		subs:      subs,
		client:    client,
		currency:  currency,
		loc:       loc,
		interval:  time.Minute,
		log:       logger,
		lastFired: make(map[string]string),
	}
	s.now = func() time.Time { return time.Now().In(loc) }
	return s
}

// Run blocks until ctx is done, evaluating the wall-clock triggers once a
// minute. A failing trigger is logged and never stops the loop.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("expiration sweep started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiration sweep stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	now := s.now()
	day, hour, minute := now.Day(), now.Hour(), now.Minute()

	switch {
	case day == 1 && hour == 10 && minute == 0:
		s.fireOnce(ctx, "renewal_reminders", now, func(ctx context.Context) (int, error) {
			return s.SendRenewalReminders(ctx)
		})
	case day == 4 && hour == 18 && minute == 0:
		s.fireOnce(ctx, "deadline_reminders", now, func(ctx context.Context) (int, error) {
			return s.SendDeadlineReminders(ctx)
		})
	case day == 6 && hour == 0 && minute == 1:
		s.fireOnce(ctx, "remove_unpaid", now, func(ctx context.Context) (int, error) {
			return s.RemoveUnpaid(ctx)
		})
	}
}

func (s *Sweeper) fireOnce(ctx context.Context, name string, now time.Time, fn func(context.Context) (int, error)) {
	date := now.Format("2006-01-02")
	if s.lastFired[name] == date {
		return
	}
	s.lastFired[name] = date

	n, err := fn(ctx)
	if err != nil {
		s.log.Error("sweep trigger failed", zap.String("trigger", name), zap.Error(err))
		return
	}
	s.log.Info("sweep trigger done", zap.String("trigger", name), zap.Int("affected", n))
}

// SendRenewalReminders messages every active subscription not fully paid
// for the running month. The end_ts is deliberately not checked: the grace
// window lasts until the 5th but the reminder goes out on the 1st.
func (s *Sweeper) SendRenewalReminders(ctx context.Context) (int, error) {
	now := s.now()
	cur := period.Current(now)
	throttleMark := now.Add(-reminderCooldown).Unix()

	subs, err := s.subs.ListUnpaidForPeriod(ctx, int(cur.Month), cur.Year, throttleMark)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		price := money.Format(sub.Plan.PriceCents, s.currency)
		text := fmt.Sprintf(
			"📅 <b>Напоминание об оплате</b>\n\n"+
				"Группа: %s\n"+
				"Наступил новый месяц! Для продолжения доступа необходимо оплатить подписку.\n\n"+
				"💰 Сумма к оплате: %s\n"+
				"⏰ <b>Оплатите до 5 числа</b>\n\n"+
				"После истечения срока доступ к группе будет приостановлен.",
			sub.Plan.Title, price,
		)
		kb := renewKeyboard(sub.PlanID, "💳 Оплатить "+price)

		if err := s.client.SendMessageButtons(ctx, sub.UserID, text, kb); err != nil {
			s.log.Warn("renewal reminder failed",
				zap.Int64("user_id", sub.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := s.subs.SetNotified(ctx, sub.ID, now.Unix()); err != nil {
			s.log.Error("updating notification throttle failed", zap.Error(err))
		}
		sent++
	}

	return sent, nil
}

// SendDeadlineReminders warns paid-current subscribers whose access runs
// out within the next five days.
func (s *Sweeper) SendDeadlineReminders(ctx context.Context) (int, error) {
	now := s.now()
	cur := period.Current(now)
	nowTS := now.Unix()

	subs, err := s.subs.ListExpiringPaid(ctx, int(cur.Month), cur.Year, nowTS, nowTS+5*24*3600)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		daysLeft := (sub.EndTS - nowTS) / (24 * 3600)
		price := money.Format(sub.Plan.PriceCents, s.currency)
		text := fmt.Sprintf(
			"⏰ <b>Напоминание о дедлайне!</b>\n\n"+
				"Группа: %s\n"+
				"📅 Срок действия подписки заканчивается через %d дн. (%s)\n\n"+
				"💳 <b>Успейте продлить подписку!</b>\n"+
				"• Полная оплата — доступ до 5 числа следующего месяца\n\n"+
				"После истечения срока доступ к группе будет приостановлен.",
			sub.Plan.Title, daysLeft, time.Unix(sub.EndTS, 0).In(s.loc).Format("02.01.2006"),
		)
		kb := renewKeyboard(sub.PlanID, "🔄 Продлить за "+price)

		if err := s.client.SendMessageButtons(ctx, sub.UserID, text, kb); err != nil {
			s.log.Warn("deadline reminder failed",
				zap.Int64("user_id", sub.UserID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, nil
}

// RemoveUnpaid revokes access for every subscription past its end_ts that
// does not reflect a fully paid current period. Paid-current rows are never
// touched. Per-row failures are logged and the sweep moves on.
func (s *Sweeper) RemoveUnpaid(ctx context.Context) (int, error) {
	now := s.now()
	cur := period.Current(now)

	subs, err := s.subs.ListExpiredUnpaid(ctx, int(cur.Month), cur.Year, now.Unix())
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range subs {
		sub := &subs[i]

		if sub.GroupID != 0 {
			err := s.client.BanMember(ctx, sub.GroupID, sub.UserID, now.Add(removalBanDuration))
			if err != nil {
				s.log.Warn("revocation ban failed",
					zap.Int64("user_id", sub.UserID),
					zap.Int64("group_id", sub.GroupID),
					zap.Error(err),
				)
			}
		}

		if err := s.subs.MarkRemoved(ctx, sub.ID); err != nil {
			s.log.Error("marking subscription removed failed",
				zap.String("sub_id", sub.ID),
				zap.Error(err),
			)
			continue
		}
		removed++

		text := fmt.Sprintf(
			"❌ Доступ к группе '%s' приостановлен.\n\n"+
				"Вы не оплатили подписку за текущий месяц. "+
				"Для восстановления доступа оплатите подписку в разделе «📋 Группы обучения».",
			sub.Plan.Title,
		)
		if err := s.client.SendMessage(ctx, sub.UserID, text); err != nil {
			s.log.Debug("revocation notice failed",
				zap.Int64("user_id", sub.UserID),
				zap.Error(err),
			)
		}
	}

	return removed, nil
}

func renewKeyboard(planID uint, label string) *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: label, CallbackData: fmt.Sprintf("renew_plan:%d", planID)}},
		},
	}
}
