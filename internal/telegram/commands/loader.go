package commands

import (
	"github.com/go-telegram/bot"

	"studygate-bot/internal/container"
	"studygate-bot/internal/middleware"
	"studygate-bot/internal/telegram/commands/admin"
	"studygate-bot/internal/telegram/commands/help"
	"studygate-bot/internal/telegram/commands/start"
)

func LoadCommandHandlers(b *bot.Bot, c *container.AppContainer) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, start.Handler())
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, help.Handler())

	// ## ADMIN COMMANDS ## \\
	b.RegisterHandler(bot.HandlerTypeMessageText, "/groups", bot.MatchTypeExact, middleware.AdminOnly(admin.GroupsHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/sublist", bot.MatchTypeExact, middleware.AdminOnly(admin.SubListHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/users", bot.MatchTypeExact, middleware.AdminOnly(admin.UsersHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypeExact, middleware.AdminOnly(admin.PendingHandler(c)))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/plans", bot.MatchTypeExact, middleware.AdminOnly(admin.PlansHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/newplan", bot.MatchTypePrefix, middleware.AdminOnly(admin.NewPlanHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/delplan", bot.MatchTypePrefix, middleware.AdminOnly(admin.DelPlanHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/newcat", bot.MatchTypePrefix, middleware.AdminOnly(admin.NewCatHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/delcat", bot.MatchTypePrefix, middleware.AdminOnly(admin.DelCatHandler(c)))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/newpromo", bot.MatchTypePrefix, middleware.AdminOnly(admin.NewPromoHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/promos", bot.MatchTypeExact, middleware.AdminOnly(admin.PromosHandler(c)))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/methods", bot.MatchTypeExact, middleware.AdminOnly(admin.MethodsHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/setdetails", bot.MatchTypePrefix, middleware.AdminOnly(admin.SetDetailsHandler(c)))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/run_payment_notifications", bot.MatchTypeExact, middleware.AdminOnly(admin.RunPaymentNotificationsHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/run_deadline_notifications", bot.MatchTypeExact, middleware.AdminOnly(admin.RunDeadlineNotificationsHandler(c)))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/run_remove_unpaid", bot.MatchTypeExact, middleware.AdminOnly(admin.RunRemoveUnpaidHandler(c)))
}
