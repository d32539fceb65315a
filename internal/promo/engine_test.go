package promo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
)

func newTestEngine(t *testing.T) (*Engine, *repositories.PromoRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PromoCode{}, &models.PromoUsage{}))

	repo := repositories.NewPromoRepository(db)
	return NewEngine(repo, "BYN", zap.NewNop()), repo
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestApplyPercentDiscount(t *testing.T) {
	e, _ := newTestEngine(t)

	promo := &models.PromoCode{Code: "SAVE15", DiscountPercent: intPtr(15)}

	newPrice, msg, err := e.Apply(9999, promo)
	require.NoError(t, err)
	// 15% of 9999 is 1499.85, the cut is floored.
	require.Equal(t, int64(8500), newPrice)
	require.Contains(t, msg, "SAVE15")
	require.Contains(t, msg, "15%")
}

func TestApplyFixedDiscountFloorsAtZero(t *testing.T) {
	e, _ := newTestEngine(t)

	promo := &models.PromoCode{Code: "BIG", DiscountFixedCents: int64Ptr(5000)}

	newPrice, _, err := e.Apply(3000, promo)
	require.NoError(t, err)
	require.Equal(t, int64(0), newPrice)
}

func TestApplyHundredPercent(t *testing.T) {
	e, _ := newTestEngine(t)

	promo := &models.PromoCode{Code: "FREE", DiscountPercent: intPtr(100)}

	newPrice, _, err := e.Apply(4200, promo)
	require.NoError(t, err)
	require.Equal(t, int64(0), newPrice)
}

func TestApplyMalformed(t *testing.T) {
	e, _ := newTestEngine(t)

	_, _, err := e.Apply(1000, &models.PromoCode{Code: "EMPTY"})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestValidateUnknownCode(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Validate(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEligibilityCheckOrder(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	// Inactive, exhausted and expired at once; the already-used check must
	// still win once a usage exists.
	yesterday := time.Now().Add(-24 * time.Hour).Unix()
	promo := &models.PromoCode{
		Code:            "STACK",
		DiscountPercent: intPtr(10),
		IsActive:        false,
		UsedCount:       5,
		MaxUses:         intPtr(5),
		ExpiresTS:       &yesterday,
	}
	require.NoError(t, repo.Create(ctx, promo))
	// Create back-fills the zero-value IsActive from the column default.
	promo.IsActive = false

	require.ErrorIs(t, e.Eligibility(ctx, promo, 777), ErrInactive)

	promo.IsActive = true
	require.ErrorIs(t, e.Eligibility(ctx, promo, 777), ErrExhausted)

	promo.MaxUses = nil
	require.ErrorIs(t, e.Eligibility(ctx, promo, 777), ErrExpired)

	promo.ExpiresTS = nil
	require.NoError(t, e.Eligibility(ctx, promo, 777))

	require.NoError(t, repo.RecordUsage(ctx, promo.ID, 777))
	require.ErrorIs(t, e.Eligibility(ctx, promo, 777), ErrAlreadyUsed)
}

func TestRecordUseIncrementsCounter(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	promo := &models.PromoCode{Code: "ONCE", DiscountPercent: intPtr(20), IsActive: true, MaxUses: intPtr(1)}
	require.NoError(t, repo.Create(ctx, promo))

	require.NoError(t, e.RecordUse(ctx, promo.ID, 100))

	stored, err := repo.GetByID(ctx, promo.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)

	// The cap is reached for everyone, and the first user can never reuse it.
	require.ErrorIs(t, e.Eligibility(ctx, stored, 200), ErrExhausted)
	require.ErrorIs(t, e.Eligibility(ctx, stored, 100), ErrAlreadyUsed)
}

func TestGenerateRandomCode(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	promo, err := e.Generate(ctx, &models.PromoCode{DiscountPercent: intPtr(30), IsActive: true})
	require.NoError(t, err)
	require.Len(t, promo.Code, 8)

	stored, err := repo.GetByCode(ctx, promo.Code)
	require.NoError(t, err)
	require.Equal(t, promo.ID, stored.ID)
}

func TestGenerateRequiresDiscount(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Generate(context.Background(), &models.PromoCode{IsActive: true})
	require.ErrorIs(t, err, ErrMalformed)
}
