// Package payments implements the two intake paths that converge on
// subscription activation: gateway card checkout and manual receipt review.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/money"
	"studygate-bot/internal/period"
	"studygate-bot/internal/platform"
	"studygate-bot/internal/promo"
	"studygate-bot/internal/subscription"

	"go.uber.org/zap"
)

var (
	ErrUnknownInvoice  = errors.New("no invoice stored for this payload")
	ErrInvoiceMismatch = errors.New("payment does not match the stored invoice")
)

// ActivationResult is what the UI layer needs to confirm a completed
// payment to the user.
type ActivationResult struct {
	Invite    string
	PlanTitle string
	Renewal   bool
	// InvitePending is set when activation committed but no credential
	// could be issued; the user should request a fresh link.
	InvitePending bool
}

type Gateway struct {
	invoices        *repositories.PaymentRepository
	plans           *repositories.PlanRepository
	users           *repositories.UserRepository
	promos          *promo.Engine
	manager         *subscription.Manager
	client          platform.Client
	currency        string
	referralPercent int
	loc             *time.Location
	now             func() time.Time
	log             *zap.Logger
}

func NewGateway(
	invoices *repositories.PaymentRepository,
	plans *repositories.PlanRepository,
	users *repositories.UserRepository,
	promos *promo.Engine,
	manager *subscription.Manager,
	client platform.Client,
	currency string,
	referralPercent int,
	loc *time.Location,
	logger *zap.Logger,
) *Gateway {
	g := &Gateway{
		invoices:        invoices,
		plans:           plans,
		users:           users,
		promos:          promos,
		manager:         manager,
		client:          client,
		currency:        currency,
		referralPercent: referralPercent,
		loc:             loc,
		log:             logger,
	}
	g.now = func() time.Time { return time.Now().In(loc) }
	return g
}

// PrepareInvoice persists the transaction intent and returns the opaque
// payload to hand to the gateway checkout. Nothing here consumes a promo
// code: a prepared invoice may be abandoned.
func (g *Gateway) PrepareInvoice(ctx context.Context, userID int64, planID uint, amountCents int64, promoID *uint, mode string) (string, error) {
	now := g.now()
	cur := period.Current(now)

	payload, err := Payload{
		PlanID:  planID,
		UserID:  userID,
		Month:   int(cur.Month),
		Year:    cur.Year,
		PromoID: promoID,
		Mode:    mode,
		Nonce:   now.Unix(),
	}.Encode()
	if err != nil {
		return "", err
	}

	inv := &models.Invoice{
		Payload:     payload,
		UserID:      userID,
		PlanID:      planID,
		AmountCents: amountCents,
		PeriodMonth: int(cur.Month),
		PeriodYear:  cur.Year,
		PromoID:     promoID,
		Mode:        mode,
	}
	if err := g.invoices.SaveInvoice(ctx, inv); err != nil {
		return "", err
	}

	return payload, nil
}

// VerifyPayload is the pre-checkout gate: the payload must decode and an
// invoice row must exist for it.
func (g *Gateway) VerifyPayload(ctx context.Context, payloadStr string) error {
	if _, err := DecodePayload(payloadStr); err != nil {
		return err
	}
	if _, err := g.invoices.GetInvoice(ctx, payloadStr); err != nil {
		return ErrUnknownInvoice
	}
	return nil
}

// HandleSuccess processes the gateway's payment-succeeded event. The echoed
// payload is decoded and cross-validated against the stored Invoice row
// before any state changes: a forged or replayed payload activates nothing.
func (g *Gateway) HandleSuccess(ctx context.Context, userID int64, payloadStr string, totalPaidCents int64, groupHint *int64) (*ActivationResult, error) {
	p, err := DecodePayload(payloadStr)
	if err != nil {
		return nil, err
	}

	inv, err := g.invoices.GetInvoice(ctx, payloadStr)
	if err != nil {
		return nil, ErrUnknownInvoice
	}

	if inv.UserID != userID || inv.PlanID != p.PlanID || inv.AmountCents != totalPaidCents {
		g.log.Warn("gateway callback does not match stored invoice",
			zap.Int64("user_id", userID),
			zap.Int64("invoice_user", inv.UserID),
			zap.Int64("paid", totalPaidCents),
			zap.Int64("invoiced", inv.AmountCents),
		)
		return nil, ErrInvoiceMismatch
	}

	plan, err := g.plans.GetByID(ctx, inv.PlanID)
	if err != nil {
		return nil, subscription.ErrPlanNotFound
	}

	invite, err := g.manager.ActivateOrRenew(ctx, userID, inv.PlanID, groupHint)
	invitePending := errors.Is(err, subscription.ErrInviteFailed)
	if err != nil && !invitePending {
		return nil, err
	}

	if inv.PromoID != nil {
		if err := g.promos.RecordUse(ctx, *inv.PromoID, userID); err != nil {
			g.log.Error("recording promo use failed", zap.Error(err))
		}
	}

	g.creditReferrer(ctx, userID, totalPaidCents)

	// One payload activates once.
	if err := g.invoices.DeleteInvoice(ctx, payloadStr); err != nil {
		g.log.Error("deleting settled invoice failed", zap.Error(err))
	}

	return &ActivationResult{
		Invite:        invite,
		PlanTitle:     plan.Title,
		Renewal:       inv.Mode == models.PaymentModeRenewal,
		InvitePending: invitePending,
	}, nil
}

// creditReferrer pays the referral cashback for a settled payment. Failures
// only lose the courtesy notification, never the transaction.
func (g *Gateway) creditReferrer(ctx context.Context, payerID int64, totalPaidCents int64) {
	payer, err := g.users.GetByID(ctx, payerID)
	if err != nil || payer.ReferredBy == nil {
		return
	}

	cashback := int64(math.Floor(float64(totalPaidCents) * float64(g.referralPercent) / 100.0))
	if cashback <= 0 {
		return
	}

	if err := g.users.AddCashback(ctx, *payer.ReferredBy, cashback); err != nil {
		g.log.Error("crediting referral cashback failed",
			zap.Int64("referrer", *payer.ReferredBy),
			zap.Error(err),
		)
		return
	}

	name := payer.Username
	if name == "" {
		name = fmt.Sprintf("%d", payerID)
	}
	text := fmt.Sprintf(
		"💰 Реферальный кэшбэк! Пользователь %s оплатил подписку. Вам начислен кэшбэк: %s",
		name, money.Format(cashback, g.currency),
	)
	if err := g.client.SendMessage(ctx, *payer.ReferredBy, text); err != nil {
		g.log.Debug("referral notification failed", zap.Error(err))
	}
}
