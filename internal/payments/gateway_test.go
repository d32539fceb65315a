package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/promo"
	"studygate-bot/internal/subscription"
)

type stubClient struct {
	inviteSeq int
	messages  map[int64][]string
}

func newStubClient() *stubClient {
	return &stubClient{messages: make(map[int64][]string)}
}

func (s *stubClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.messages[chatID] = append(s.messages[chatID], text)
	return nil
}

func (s *stubClient) SendMessageButtons(ctx context.Context, chatID int64, text string, kb *tgmodels.InlineKeyboardMarkup) error {
	s.messages[chatID] = append(s.messages[chatID], text)
	return nil
}

func (s *stubClient) CreateInviteLink(ctx context.Context, chatID int64, expire time.Duration, memberLimit int) (string, error) {
	s.inviteSeq++
	return fmt.Sprintf("https://t.me/+pay%d", s.inviteSeq), nil
}

func (s *stubClient) IsBotAdmin(ctx context.Context, chatID int64) (bool, error) { return true, nil }

func (s *stubClient) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	return nil
}

func (s *stubClient) UnbanMember(ctx context.Context, chatID, userID int64) error { return nil }

func (s *stubClient) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	return "member", nil
}

type fixture struct {
	db      *gorm.DB
	client  *stubClient
	gateway *Gateway
	manual  *ManualService
	users   *repositories.UserRepository
	promos  *repositories.PromoRepository
	plan    *models.Plan
	loc     *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.ManagedGroup{}, &models.Plan{},
		&models.Subscription{}, &models.Invoice{}, &models.ManualPayment{},
		&models.PromoCode{}, &models.PromoUsage{},
	))

	loc, err := time.LoadLocation("Europe/Minsk")
	require.NoError(t, err)

	client := newStubClient()
	logger := zap.NewNop()

	userRepo := repositories.NewUserRepository(db)
	promoRepo := repositories.NewPromoRepository(db)
	payRepo := repositories.NewPaymentRepository(db)
	planRepo := repositories.NewPlanRepository(db)

	engine := promo.NewEngine(promoRepo, "BYN", logger)
	manager := subscription.NewManager(
		repositories.NewSubscriptionRepository(db),
		planRepo,
		repositories.NewGroupRepository(db),
		client, loc, logger,
	)
	gateway := NewGateway(payRepo, planRepo, userRepo, engine, manager, client, "BYN", 10, loc, logger)
	manual := NewManualService(payRepo, manager, engine, loc, logger)

	require.NoError(t, db.Create(&models.ManagedGroup{ChatID: -100600, Title: "Study", Type: "supergroup", IsDefault: true}).Error)
	plan := &models.Plan{Title: "Физика", PriceCents: 2500, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	return &fixture{
		db: db, client: client, gateway: gateway, manual: manual,
		users: userRepo, promos: promoRepo, plan: plan, loc: loc,
	}
}

func TestGatewayHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload, err := f.gateway.PrepareInvoice(ctx, 42, f.plan.ID, f.plan.PriceCents, nil, models.PaymentModeNew)
	require.NoError(t, err)
	require.NoError(t, f.gateway.VerifyPayload(ctx, payload))

	res, err := f.gateway.HandleSuccess(ctx, 42, payload, f.plan.PriceCents, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Invite)
	require.Equal(t, "Физика", res.PlanTitle)
	require.False(t, res.Renewal)
	require.False(t, res.InvitePending)

	var sub models.Subscription
	require.NoError(t, f.db.First(&sub, "user_id = ?", 42).Error)
	require.Equal(t, models.PartFull, sub.PartPaid)

	// The settled invoice is gone; a replay of the callback activates nothing.
	_, err = f.gateway.HandleSuccess(ctx, 42, payload, f.plan.PriceCents, nil)
	require.ErrorIs(t, err, ErrUnknownInvoice)
}

func TestGatewayRejectsMismatchedCallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload, err := f.gateway.PrepareInvoice(ctx, 42, f.plan.ID, f.plan.PriceCents, nil, models.PaymentModeNew)
	require.NoError(t, err)

	// Wrong payer.
	_, err = f.gateway.HandleSuccess(ctx, 43, payload, f.plan.PriceCents, nil)
	require.ErrorIs(t, err, ErrInvoiceMismatch)

	// Wrong amount.
	_, err = f.gateway.HandleSuccess(ctx, 42, payload, f.plan.PriceCents-1, nil)
	require.ErrorIs(t, err, ErrInvoiceMismatch)

	// Nothing was activated.
	var count int64
	require.NoError(t, f.db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestGatewayRejectsUnknownPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.gateway.VerifyPayload(ctx, "garbage"), ErrBadPayload)

	fabricated, err := Payload{PlanID: f.plan.ID, UserID: 42, Month: 3, Year: 2026, Mode: models.PaymentModeNew}.Encode()
	require.NoError(t, err)
	require.ErrorIs(t, f.gateway.VerifyPayload(ctx, fabricated), ErrUnknownInvoice)

	_, err = f.gateway.HandleSuccess(ctx, 42, fabricated, f.plan.PriceCents, nil)
	require.ErrorIs(t, err, ErrUnknownInvoice)
}

func TestGatewayConsumesPromoOnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pct := 20
	code := &models.PromoCode{Code: "PHYS20", DiscountPercent: &pct, IsActive: true}
	require.NoError(t, f.promos.Create(ctx, code))

	discounted := f.plan.PriceCents - f.plan.PriceCents*20/100
	payload, err := f.gateway.PrepareInvoice(ctx, 42, f.plan.ID, discounted, &code.ID, models.PaymentModeNew)
	require.NoError(t, err)

	// Preparing the invoice must not consume the code.
	stored, err := f.promos.GetByID(ctx, code.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.UsedCount)

	_, err = f.gateway.HandleSuccess(ctx, 42, payload, discounted, nil)
	require.NoError(t, err)

	stored, err = f.promos.GetByID(ctx, code.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)

	used, err := f.promos.HasUsage(ctx, code.ID, 42)
	require.NoError(t, err)
	require.True(t, used)
}

func TestGatewayHonorsGroupHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&models.ManagedGroup{ChatID: -100601, Title: "Химия", Type: "group"}).Error)

	payload, err := f.gateway.PrepareInvoice(ctx, 42, f.plan.ID, f.plan.PriceCents, nil, models.PaymentModeNew)
	require.NoError(t, err)

	hint := int64(-100601)
	_, err = f.gateway.HandleSuccess(ctx, 42, payload, f.plan.PriceCents, &hint)
	require.NoError(t, err)

	// The hint beats the default group when the plan has none of its own.
	var sub models.Subscription
	require.NoError(t, f.db.First(&sub, "user_id = ?", 42).Error)
	require.Equal(t, int64(-100601), sub.GroupID)
}

func TestGatewayCreditsReferrer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	referrer := int64(7)
	require.NoError(t, f.users.EnsureUser(ctx, referrer, nil, "mentor"))
	require.NoError(t, f.users.EnsureUser(ctx, 42, &referrer, "student"))

	payload, err := f.gateway.PrepareInvoice(ctx, 42, f.plan.ID, f.plan.PriceCents, nil, models.PaymentModeNew)
	require.NoError(t, err)

	_, err = f.gateway.HandleSuccess(ctx, 42, payload, f.plan.PriceCents, nil)
	require.NoError(t, err)

	// floor(2500 * 10 / 100) = 250
	mentor, err := f.users.GetByID(ctx, referrer)
	require.NoError(t, err)
	require.Equal(t, int64(250), mentor.CashbackCents)
	require.NotEmpty(t, f.client.messages[referrer])
}
