package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/subscription"
)

func TestManualSubmitValidatesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents, "file-1", " И ", nil)
	require.ErrorIs(t, err, ErrNameTooShort)

	ticket, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents, "file-1", "Иванов Иван", nil)
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)
	require.Equal(t, models.ManualStatusPending, ticket.Status)
	require.Equal(t, "Иванов Иван", ticket.FullName)
	require.NotZero(t, ticket.PeriodMonth)
	require.NotZero(t, ticket.PeriodYear)
}

func TestManualApproveActivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents, "file-1", "Иванов Иван", nil)
	require.NoError(t, err)

	res, err := f.manual.Review(ctx, ticket.ID, 1, true)
	require.NoError(t, err)
	require.True(t, res.Approved)
	require.NotEmpty(t, res.Invite)

	var sub models.Subscription
	require.NoError(t, f.db.First(&sub, "user_id = ?", 42).Error)
	require.Equal(t, models.PartFull, sub.PartPaid)

	var stored models.ManualPayment
	require.NoError(t, f.db.First(&stored, "id = ?", ticket.ID).Error)
	require.Equal(t, models.ManualStatusApproved, stored.Status)
	require.NotNil(t, stored.AdminID)
	require.Equal(t, int64(1), *stored.AdminID)
}

func TestManualRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents, "file-1", "Иванов Иван", nil)
	require.NoError(t, err)

	res, err := f.manual.Review(ctx, ticket.ID, 1, false)
	require.NoError(t, err)
	require.False(t, res.Approved)

	var count int64
	require.NoError(t, f.db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	// A settled ticket cannot be reviewed again, in either direction.
	_, err = f.manual.Review(ctx, ticket.ID, 1, true)
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestManualReviewUnknownTicket(t *testing.T) {
	f := newFixture(t)

	_, err := f.manual.Review(context.Background(), "no-such-ticket", 1, true)
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestManualApproveConsumesPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fixed := int64(500)
	code := &models.PromoCode{Code: "MANUAL500", DiscountFixedCents: &fixed, IsActive: true}
	require.NoError(t, f.promos.Create(ctx, code))

	ticket, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents-fixed, "file-1", "Иванов Иван", &code.ID)
	require.NoError(t, err)

	// Promo is held, not spent, until the admin approves.
	stored, err := f.promos.GetByID(ctx, code.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.UsedCount)

	_, err = f.manual.Review(ctx, ticket.ID, 1, true)
	require.NoError(t, err)

	stored, err = f.promos.GetByID(ctx, code.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)
}

func TestManualApproveWithoutGroupFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Where("1 = 1").Delete(&models.ManagedGroup{}).Error)

	ticket, err := f.manual.Submit(ctx, 42, f.plan.ID, f.plan.PriceCents, "file-1", "Иванов Иван", nil)
	require.NoError(t, err)

	_, err = f.manual.Review(ctx, ticket.ID, 1, true)
	require.ErrorIs(t, err, subscription.ErrNoGroup)

	// The ticket stays pending so the admin can retry after fixing the group.
	var stored models.ManualPayment
	require.NoError(t, f.db.First(&stored, "id = ?", ticket.ID).Error)
	require.Equal(t, models.ManualStatusPending, stored.Status)
}
