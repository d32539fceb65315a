package container

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studygate-bot/internal/cache"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/payments"
	"studygate-bot/internal/platform"
	"studygate-bot/internal/promo"
	"studygate-bot/internal/subscription"
	"studygate-bot/internal/sweeper"
	"studygate-bot/pkg/config"
)

type AppContainer struct {
	DB         *gorm.DB
	Log        *zap.Logger
	UserRepo   *repositories.UserRepository
	GroupRepo  *repositories.GroupRepository
	PlanRepo   *repositories.PlanRepository
	CatRepo    *repositories.CategoryRepository
	MethodRepo *repositories.PaymentMethodRepository
	SubRepo    *repositories.SubscriptionRepository
	PromoRepo  *repositories.PromoRepository
	PayRepo    *repositories.PaymentRepository

	// ## CACHE ## \\
	SessionManager *cache.SessionManager

	// ## SERVICES ## \\
	Promo   *promo.Engine
	Client  platform.Client
	Manager *subscription.Manager
	Gateway *payments.Gateway
	Manual  *payments.ManualService
	Sweeper *sweeper.Sweeper
}

func NewAppContainer(db *gorm.DB, logger *zap.Logger) *AppContainer {
	promoRepo := repositories.NewPromoRepository(db)

	return &AppContainer{
		DB:         db,
		Log:        logger,
		UserRepo:   repositories.NewUserRepository(db),
		GroupRepo:  repositories.NewGroupRepository(db),
		PlanRepo:   repositories.NewPlanRepository(db),
		CatRepo:    repositories.NewCategoryRepository(db),
		MethodRepo: repositories.NewPaymentMethodRepository(db),
		SubRepo:    repositories.NewSubscriptionRepository(db),
		PromoRepo:  promoRepo,
		PayRepo:    repositories.NewPaymentRepository(db),

		SessionManager: cache.NewSessionManager(),

		Promo: promo.NewEngine(promoRepo, config.Currency, logger),
	}
}

// AttachPlatform wires the services that need a live bot connection. The
// container is built before the bot, so this runs as a second phase.
func (c *AppContainer) AttachPlatform(client platform.Client) {
	c.Client = client
	c.Manager = subscription.NewManager(c.SubRepo, c.PlanRepo, c.GroupRepo, client, config.Location, c.Log)
	c.Gateway = payments.NewGateway(
		c.PayRepo, c.PlanRepo, c.UserRepo,
		c.Promo, c.Manager, client,
		config.Currency, config.ReferralPercent, config.Location, c.Log,
	)
	c.Manual = payments.NewManualService(c.PayRepo, c.Manager, c.Promo, config.Location, c.Log)
	c.Sweeper = sweeper.New(c.SubRepo, client, config.Currency, config.Location, c.Log)
}
