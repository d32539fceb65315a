package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/period"
	"studygate-bot/internal/promo"
	"studygate-bot/internal/subscription"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNameTooShort   = errors.New("full name is too short")
	ErrTicketNotFound = errors.New("manual payment ticket not found or already reviewed")
)

// ManualService runs the receipt-review path: the user submits a receipt
// image and legal name, an admin approves or rejects, approval activates.
type ManualService struct {
	payments *repositories.PaymentRepository
	manager  *subscription.Manager
	promos   *promo.Engine
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

// ReviewResult describes a completed review for user/admin messaging.
type ReviewResult struct {
	Ticket        *models.ManualPayment
	Approved      bool
	Invite        string
	InvitePending bool
}

func NewManualService(
	payments *repositories.PaymentRepository,
	manager *subscription.Manager,
	promos *promo.Engine,
	loc *time.Location,
	logger *zap.Logger,
) *ManualService {
	s := &ManualService{
		payments: payments,
		manager:  manager,
		promos:   promos,
		loc:      loc,
		log:      logger,
	}
	s.now = func() time.Time { return time.Now().In(loc) }
	return s
}

// Submit files a pending ticket. The legal name must be at least two
// characters; shorter input means the user should be re-prompted.
func (s *ManualService) Submit(ctx context.Context, userID int64, planID uint, amountCents int64, receiptFileID, fullName string, promoID *uint) (*models.ManualPayment, error) {
	fullName = strings.TrimSpace(fullName)
	if len([]rune(fullName)) < 2 {
		return nil, ErrNameTooShort
	}

	cur := period.Current(s.now())
	ticket := &models.ManualPayment{
		ID:            uuid.NewString(),
		UserID:        userID,
		PlanID:        planID,
		AmountCents:   amountCents,
		ReceiptFileID: receiptFileID,
		FullName:      fullName,
		Status:        models.ManualStatusPending,
		PeriodMonth:   int(cur.Month),
		PeriodYear:    cur.Year,
		PromoID:       promoID,
	}

	if err := s.payments.CreateManual(ctx, ticket); err != nil {
		return nil, err
	}

	s.log.Info("manual payment submitted",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("user_id", userID),
		zap.Uint("plan_id", planID),
		zap.Int64("amount_cents", amountCents),
	)
	return ticket, nil
}

// Review settles a pending ticket. Approval activates the subscription and
// consumes the promo code the ticket carries; rejection is terminal with no
// retry path other than a new submission.
func (s *ManualService) Review(ctx context.Context, ticketID string, adminID int64, approve bool) (*ReviewResult, error) {
	ticket, err := s.payments.GetPendingManual(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	if !approve {
		err := s.payments.ReviewManual(ctx, ticket.ID, models.ManualStatusRejected, adminID, s.now())
		if err != nil {
			return nil, err
		}
		s.log.Info("manual payment rejected",
			zap.String("ticket_id", ticket.ID),
			zap.Int64("admin_id", adminID),
		)
		return &ReviewResult{Ticket: ticket, Approved: false}, nil
	}

	invite, err := s.manager.ActivateOrRenew(ctx, ticket.UserID, ticket.PlanID, nil)
	invitePending := errors.Is(err, subscription.ErrInviteFailed)
	if err != nil && !invitePending {
		return nil, err
	}

	if err := s.payments.ReviewManual(ctx, ticket.ID, models.ManualStatusApproved, adminID, s.now()); err != nil {
		return nil, err
	}

	if ticket.PromoID != nil {
		if err := s.promos.RecordUse(ctx, *ticket.PromoID, ticket.UserID); err != nil {
			s.log.Error("recording promo use failed", zap.Error(err))
		}
	}

	s.log.Info("manual payment approved",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("admin_id", adminID),
	)
	return &ReviewResult{
		Ticket:        ticket,
		Approved:      true,
		Invite:        invite,
		InvitePending: invitePending,
	}, nil
}
