package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/container"
	"studygate-bot/internal/middleware"
	"studygate-bot/internal/telegram/callbacks/catalog"
	"studygate-bot/internal/telegram/callbacks/manualflow"
	"studygate-bot/internal/telegram/callbacks/purchase"
	"studygate-bot/internal/telegram/callbacks/review"
	"studygate-bot/internal/telegram/callbacks/subview"
	"studygate-bot/internal/telegram/commands/admin"
	"studygate-bot/internal/telegram/commands/help"
	"studygate-bot/internal/telegram/commands/start"
)

func LoadCallbacksHandlers(b *bot.Bot, c *container.AppContainer) {
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "start", bot.MatchTypeExact, start.CallbackHandler())
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "help", bot.MatchTypeExact, help.CallbackHandler())

	// ## STOREFRONT ## \\
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "catalog", bot.MatchTypeExact, catalog.Handler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cat:", bot.MatchTypePrefix, catalog.CategoryHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "plan:", bot.MatchTypePrefix, catalog.PlanHandler(c))

	// ## PURCHASE ## \\
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "buy_full:", bot.MatchTypePrefix, purchase.BuyHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "renew_plan:", bot.MatchTypePrefix, purchase.BuyHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "buy_promo:", bot.MatchTypePrefix, purchase.PromoEntryHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cancel_promo", bot.MatchTypeExact, purchase.CancelPromoHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "pm:", bot.MatchTypePrefix, purchase.MethodHandler(c))

	// ## MANUAL PAYMENT ## \\
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "confirm_paid", bot.MatchTypeExact, manualflow.ConfirmPaidHandler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cancel_manual", bot.MatchTypeExact, manualflow.CancelHandler(c))

	// ## SUBSCRIPTION VIEW ## \\
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "my_subs", bot.MatchTypeExact, subview.Handler(c))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "new_link:", bot.MatchTypePrefix, subview.NewLinkHandler(c))

	// ## ADMIN REVIEW ## \\
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "approve_payment:", bot.MatchTypePrefix, middleware.AdminOnly(review.Handler(c)))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "reject_payment:", bot.MatchTypePrefix, middleware.AdminOnly(review.Handler(c)))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_default:", bot.MatchTypePrefix, middleware.AdminOnly(admin.SetDefaultHandler(c)))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "toggle_pm:", bot.MatchTypePrefix, middleware.AdminOnly(admin.ToggleMethodHandler(c)))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delcat_cascade:", bot.MatchTypePrefix, middleware.AdminOnly(admin.DelCatCascadeHandler(c)))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delcat_transfer:", bot.MatchTypePrefix, middleware.AdminOnly(admin.DelCatTransferHandler(c)))

	// ## CARD GATEWAY ## \\
	b.RegisterHandlerMatchFunc(matchPreCheckout, purchase.PreCheckoutHandler(c))
	b.RegisterHandlerMatchFunc(matchSuccessfulPayment, purchase.SuccessfulPaymentHandler(c))

	// ## FLOW INPUT ## \\
	b.RegisterHandlerMatchFunc(matchPhoto, photoRouter(c))
	b.RegisterHandlerMatchFunc(matchPlainText, textRouter(c))
}

func matchPreCheckout(update *models.Update) bool {
	return update.PreCheckoutQuery != nil
}

func matchSuccessfulPayment(update *models.Update) bool {
	return update.Message != nil && update.Message.SuccessfulPayment != nil
}

func matchPhoto(update *models.Update) bool {
	return update.Message != nil && update.Message.From != nil &&
		!update.Message.From.IsBot && len(update.Message.Photo) > 0
}

func matchPlainText(update *models.Update) bool {
	return update.Message != nil && update.Message.From != nil &&
		!update.Message.From.IsBot && update.Message.Text != "" &&
		!strings.HasPrefix(update.Message.Text, "/")
}

// photoRouter feeds receipt photos into the manual payment flow.
func photoRouter(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		manualflow.ReceiptInput(ctx, b, c, update.Message.From.ID, update.Message.Photo)
	}
}

// textRouter dispatches free text by the flow the user is in.
func textRouter(c *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		userID := update.Message.From.ID
		state, err := c.SessionManager.PeekFlow(ctx, userID)
		if err != nil {
			return
		}

		switch state.Flow {
		case cache.FlowPromoEntry:
			purchase.PromoCodeInput(ctx, b, c, userID, update.Message.Text)
		case cache.FlowManualPayment:
			manualflow.NameInput(ctx, b, c, userID, update.Message.Text)
		}
	}
}
