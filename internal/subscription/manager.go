// Package subscription holds the billing-period state machine: activation,
// renewal, paid-status evaluation and credential issuance.
package subscription

import (
	"context"
	"errors"
	"time"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
	"studygate-bot/internal/period"
	"studygate-bot/internal/platform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrNoGroup      = errors.New("no access group configured for this plan")
	// ErrInviteFailed means the subscription row was committed but no
	// credential could be issued; the user can request a fresh link later.
	ErrInviteFailed = errors.New("could not issue an invite link")
	ErrNotFound     = errors.New("subscription not found")
	ErrNotAllowed   = errors.New("only the subscription owner or an admin may do this")
	ErrBotNotAdmin  = errors.New("bot is not an administrator in the target group")
)

// InviteTTL is how long an issued one-time credential stays valid.
const InviteTTL = 7 * 24 * time.Hour

type Status string

const (
	StatusPaid         Status = "paid"
	StatusNeedsRenewal Status = "needs_renewal"
	StatusExpired      Status = "expired"
)

// StatusInfo is the derived payment state of one (user, plan) pair.
type StatusInfo struct {
	Sub    *models.Subscription
	Paid   bool
	Status Status
}

type Manager struct {
	subs   *repositories.SubscriptionRepository
	plans  *repositories.PlanRepository
	groups *repositories.GroupRepository
	client platform.Client
	loc    *time.Location
	now    func() time.Time
	log    *zap.Logger
}

func NewManager(
	subs *repositories.SubscriptionRepository,
	plans *repositories.PlanRepository,
	groups *repositories.GroupRepository,
	client platform.Client,
	loc *time.Location,
	logger *zap.Logger,
) *Manager {
	m := &Manager{
		subs:   subs,
		plans:  plans,
		groups: groups,
		client: client,
		loc:    loc,
		log:    logger,
	}
	m.now = func() time.Time { return time.Now().In(loc) }
	return m
}

// IsPaidFor reports whether the row covers the given period in full and has
// not yet run out.
func IsPaidFor(sub *models.Subscription, p period.Period, nowTS int64) bool {
	return sub.PeriodMonth == int(p.Month) &&
		sub.PeriodYear == p.Year &&
		sub.PartPaid == models.PartFull &&
		sub.EndTS > nowTS
}

// ActivateOrRenew marks the (user, plan) pair paid for the current period
// and returns a fresh one-time invite link. Within an already-paid period
// the call is idempotent: it only refreshes the credential.
//
// The returned credential may be empty with ErrInviteFailed when the
// subscription was committed but the platform refused to issue a link;
// everything else leaves state untouched on error.
func (m *Manager) ActivateOrRenew(ctx context.Context, userID int64, planID uint, groupHint *int64) (string, error) {
	plan, err := m.plans.GetByID(ctx, planID)
	if err != nil {
		return "", ErrPlanNotFound
	}

	groupID, err := m.resolveGroup(ctx, plan, groupHint)
	if err != nil {
		return "", err
	}

	// The user may be banned from an earlier removal. Lifting the ban is
	// best effort: it fails when the user was never banned.
	if err := m.client.UnbanMember(ctx, groupID, userID); err != nil {
		m.log.Debug("unban before activation failed",
			zap.Int64("user_id", userID),
			zap.Int64("group_id", groupID),
			zap.Error(err),
		)
	}

	now := m.now()
	nowTS := now.Unix()
	cur := period.Current(now)
	endTS := period.SubscriptionEnd(now).Unix()

	invite, inviteErr := m.client.CreateInviteLink(ctx, groupID, InviteTTL, 1)
	if inviteErr != nil {
		m.log.Warn("invite link creation failed",
			zap.Int64("group_id", groupID),
			zap.Error(inviteErr),
		)
	}

	existing, err := m.subs.GetActive(ctx, userID, planID)
	if err != nil {
		return "", err
	}

	switch {
	case existing != nil && IsPaidFor(existing, cur, nowTS):
		// Already paid for this period: refresh the credential only.
		if err := m.subs.RefreshInvite(ctx, existing.ID, invite); err != nil {
			return "", err
		}

	case existing != nil:
		err := m.subs.Update(ctx, existing.ID, map[string]interface{}{
			"period_month":         int(cur.Month),
			"period_year":          cur.Year,
			"part_paid":            models.PartFull,
			"start_ts":             nowTS,
			"end_ts":               endTS,
			"invite_link":          invite,
			"last_notification_ts": nil,
			"active":               true,
			"removed":              false,
			"group_id":             groupID,
		})
		if err != nil {
			return "", err
		}

	default:
		sub := &models.Subscription{
			ID:          uuid.NewString(),
			UserID:      userID,
			PlanID:      planID,
			GroupID:     groupID,
			Active:      true,
			Removed:     false,
			StartTS:     nowTS,
			EndTS:       endTS,
			PeriodMonth: int(cur.Month),
			PeriodYear:  cur.Year,
			PartPaid:    models.PartFull,
		}
		if invite != "" {
			sub.InviteLink = &invite
		}
		if err := m.subs.Create(ctx, sub); err != nil {
			return "", err
		}
	}

	m.log.Info("subscription activated",
		zap.Int64("user_id", userID),
		zap.Uint("plan_id", planID),
		zap.Int64("group_id", groupID),
		zap.Int64("end_ts", endTS),
	)

	if inviteErr != nil || invite == "" {
		return "", ErrInviteFailed
	}
	return invite, nil
}

// CheckStatus derives the payment state for (user, plan). Returns nil when
// the user has no tracked subscription for the plan.
func (m *Manager) CheckStatus(ctx context.Context, userID int64, planID uint) (*StatusInfo, error) {
	sub, err := m.subs.GetActive(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return m.statusOf(sub), nil
}

func (m *Manager) statusOf(sub *models.Subscription) *StatusInfo {
	now := m.now()
	paid := IsPaidFor(sub, period.Current(now), now.Unix())

	status := StatusNeedsRenewal
	if paid {
		status = StatusPaid
	} else if sub.EndTS < now.Unix() {
		status = StatusExpired
	}

	return &StatusInfo{Sub: sub, Paid: paid, Status: status}
}

// IssueFreshCredential replaces the stored invite link with a newly created
// one. Only the subscription owner or an administrator may request it, and
// the bot must still hold admin rights in the target group.
func (m *Manager) IssueFreshCredential(ctx context.Context, subID string, requesterID int64, requesterIsAdmin bool) (string, error) {
	sub, err := m.subs.GetByID(ctx, subID)
	if err != nil {
		return "", ErrNotFound
	}

	if sub.UserID != requesterID && !requesterIsAdmin {
		return "", ErrNotAllowed
	}

	if sub.GroupID == 0 {
		return "", ErrNoGroup
	}

	admin, err := m.client.IsBotAdmin(ctx, sub.GroupID)
	if err != nil {
		m.log.Warn("could not verify bot admin rights, trying anyway",
			zap.Int64("group_id", sub.GroupID),
			zap.Error(err),
		)
	} else if !admin {
		return "", ErrBotNotAdmin
	}

	invite, err := m.client.CreateInviteLink(ctx, sub.GroupID, InviteTTL, 1)
	if err != nil {
		return "", ErrInviteFailed
	}

	// The old link is not revoked: being single-use and short-lived it
	// simply goes stale.
	nowTS := m.now().Unix()
	err = m.subs.Update(ctx, sub.ID, map[string]interface{}{
		"invite_link":          invite,
		"last_notification_ts": nowTS,
	})
	if err != nil {
		return "", err
	}

	return invite, nil
}

// StatusByUser lists the derived state of every active subscription the
// user holds.
func (m *Manager) StatusByUser(ctx context.Context, userID int64) ([]*StatusInfo, error) {
	subs, err := m.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]*StatusInfo, 0, len(subs))
	for i := range subs {
		infos = append(infos, m.statusOf(&subs[i]))
	}
	return infos, nil
}

func (m *Manager) resolveGroup(ctx context.Context, plan *models.Plan, hint *int64) (int64, error) {
	if plan.GroupID != nil && *plan.GroupID != 0 {
		return *plan.GroupID, nil
	}
	if hint != nil && *hint != 0 {
		return *hint, nil
	}
	group, err := m.groups.GetDefault(ctx)
	if err != nil {
		return 0, ErrNoGroup
	}
	return group.ChatID, nil
}
