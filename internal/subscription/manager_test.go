package subscription

import (
	"context"
	"errors"
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
	"studygate-bot/internal/period"
)

type fakeClient struct {
	inviteSeq   int
	inviteErr   error
	botIsAdmin  bool
	adminErr    error
	banned      []int64
	unbanned    []int64
	sentTexts   []string
	lastInvites []string
}

func (f *fakeClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.sentTexts = append(f.sentTexts, text)
	return nil
}

func (f *fakeClient) SendMessageButtons(ctx context.Context, chatID int64, text string, kb *tgmodels.InlineKeyboardMarkup) error {
	f.sentTexts = append(f.sentTexts, text)
	return nil
}

func (f *fakeClient) CreateInviteLink(ctx context.Context, chatID int64, expire time.Duration, memberLimit int) (string, error) {
	if f.inviteErr != nil {
		return "", f.inviteErr
	}
	f.inviteSeq++
	link := fmt.Sprintf("https://t.me/+invite%d", f.inviteSeq)
	f.lastInvites = append(f.lastInvites, link)
	return link, nil
}

func (f *fakeClient) IsBotAdmin(ctx context.Context, chatID int64) (bool, error) {
	return f.botIsAdmin, f.adminErr
}

func (f *fakeClient) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeClient) UnbanMember(ctx context.Context, chatID, userID int64) error {
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakeClient) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	return "member", nil
}

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Minsk")
	require.NoError(t, err)
	return loc
}

func newTestManager(t *testing.T, at time.Time) (*Manager, *fakeClient, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ManagedGroup{}, &models.Plan{}, &models.Subscription{},
	))

	client := &fakeClient{botIsAdmin: true}
	m := NewManager(
		repositories.NewSubscriptionRepository(db),
		repositories.NewPlanRepository(db),
		repositories.NewGroupRepository(db),
		client,
		at.Location(),
		zap.NewNop(),
	)
	m.now = func() time.Time { return at }
	return m, client, db
}

func seedPlanAndGroup(t *testing.T, db *gorm.DB) *models.Plan {
	t.Helper()
	require.NoError(t, db.Create(&models.ManagedGroup{ChatID: -100500, Title: "Study", Type: "supergroup", IsDefault: true}).Error)
	plan := &models.Plan{Title: "Математика", PriceCents: 1000, IsActive: true}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func TestActivateNewSubscription(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, client, db := newTestManager(t, at)
	plan := seedPlanAndGroup(t, db)
	ctx := context.Background()

	invite, err := m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, invite)
	require.Contains(t, client.unbanned, int64(42))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", 42).Error)
	require.True(t, sub.Active)
	require.False(t, sub.Removed)
	require.Equal(t, models.PartFull, sub.PartPaid)
	require.Equal(t, 3, sub.PeriodMonth)
	require.Equal(t, 2026, sub.PeriodYear)
	require.Equal(t, int64(-100500), sub.GroupID)

	// Access always runs to the 5th of the next month, 23:59:59.
	end := time.Unix(sub.EndTS, 0).In(loc)
	require.Equal(t, time.April, end.Month())
	require.Equal(t, 5, end.Day())
	require.Equal(t, 23, end.Hour())
	require.Equal(t, 59, end.Minute())
}

func TestActivateIdempotentWithinPaidPeriod(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, _, db := newTestManager(t, at)
	plan := seedPlanAndGroup(t, db)
	ctx := context.Background()

	first, err := m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)

	var before models.Subscription
	require.NoError(t, db.First(&before, "user_id = ?", 42).Error)

	second, err := m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Still one row, same coverage window, only the credential changed.
	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var after models.Subscription
	require.NoError(t, db.First(&after, "user_id = ?", 42).Error)
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, before.EndTS, after.EndTS)
	require.Equal(t, before.StartTS, after.StartTS)
	require.NotNil(t, after.InviteLink)
	require.Equal(t, second, *after.InviteLink)
}

func TestRenewalMutatesRowInPlace(t *testing.T) {
	loc := mustLoc(t)
	march := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, _, db := newTestManager(t, march)
	plan := seedPlanAndGroup(t, db)
	ctx := context.Background()

	_, err := m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)

	var before models.Subscription
	require.NoError(t, db.First(&before, "user_id = ?", 42).Error)

	// A month later the period rolled over and the row must be renewed,
	// not duplicated.
	april := time.Date(2026, time.April, 2, 9, 0, 0, 0, loc)
	m.now = func() time.Time { return april }

	_, err = m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var after models.Subscription
	require.NoError(t, db.First(&after, "user_id = ?", 42).Error)
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, 4, after.PeriodMonth)
	require.Greater(t, after.EndTS, before.EndTS)
	require.Nil(t, after.LastNotificationTS)

	end := time.Unix(after.EndTS, 0).In(loc)
	require.Equal(t, time.May, end.Month())
	require.Equal(t, 5, end.Day())
}

func TestActivateWithoutAnyGroup(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, _, db := newTestManager(t, at)

	plan := &models.Plan{Title: "Без группы", PriceCents: 1000, IsActive: true}
	require.NoError(t, db.Create(plan).Error)

	_, err := m.ActivateOrRenew(context.Background(), 42, plan.ID, nil)
	require.ErrorIs(t, err, ErrNoGroup)
}

func TestActivateCommitsWhenInviteFails(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, client, db := newTestManager(t, at)
	plan := seedPlanAndGroup(t, db)
	client.inviteErr = errors.New("rights revoked")

	invite, err := m.ActivateOrRenew(context.Background(), 42, plan.ID, nil)
	require.ErrorIs(t, err, ErrInviteFailed)
	require.Empty(t, invite)

	// The payment is not lost: the row is committed and a fresh link can be
	// issued later.
	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", 42).Error)
	require.True(t, sub.Active)
	require.Equal(t, models.PartFull, sub.PartPaid)
}

func TestCheckStatus(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, _, db := newTestManager(t, at)
	plan := seedPlanAndGroup(t, db)
	ctx := context.Background()

	info, err := m.CheckStatus(ctx, 42, plan.ID)
	require.NoError(t, err)
	require.Nil(t, info)

	_, err = m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)

	info, err = m.CheckStatus(ctx, 42, plan.ID)
	require.NoError(t, err)
	require.True(t, info.Paid)
	require.Equal(t, StatusPaid, info.Status)

	// New month, old paid period: renewal is due but access has not lapsed.
	april := time.Date(2026, time.April, 2, 9, 0, 0, 0, loc)
	m.now = func() time.Time { return april }

	info, err = m.CheckStatus(ctx, 42, plan.ID)
	require.NoError(t, err)
	require.False(t, info.Paid)
	require.Equal(t, StatusNeedsRenewal, info.Status)

	// Past the end timestamp the subscription reads as expired.
	late := time.Date(2026, time.April, 10, 9, 0, 0, 0, loc)
	m.now = func() time.Time { return late }

	info, err = m.CheckStatus(ctx, 42, plan.ID)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, info.Status)
}

func TestIssueFreshCredential(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.March, 3, 12, 0, 0, 0, loc)
	m, client, db := newTestManager(t, at)
	plan := seedPlanAndGroup(t, db)
	ctx := context.Background()

	_, err := m.ActivateOrRenew(ctx, 42, plan.ID, nil)
	require.NoError(t, err)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", 42).Error)

	// A stranger may not pull someone else's credential.
	_, err = m.IssueFreshCredential(ctx, sub.ID, 999, false)
	require.ErrorIs(t, err, ErrNotAllowed)

	// An admin may.
	link, err := m.IssueFreshCredential(ctx, sub.ID, 999, true)
	require.NoError(t, err)
	require.NotEmpty(t, link)

	// The owner may, and the stored link follows the newest issue.
	link, err = m.IssueFreshCredential(ctx, sub.ID, 42, false)
	require.NoError(t, err)

	require.NoError(t, db.First(&sub, "user_id = ?", 42).Error)
	require.NotNil(t, sub.InviteLink)
	require.Equal(t, link, *sub.InviteLink)
	require.NotNil(t, sub.LastNotificationTS)

	client.botIsAdmin = false
	_, err = m.IssueFreshCredential(ctx, sub.ID, 42, false)
	require.ErrorIs(t, err, ErrBotNotAdmin)

	_, err = m.IssueFreshCredential(ctx, "missing", 42, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPeriodRolloverDecember(t *testing.T) {
	loc := mustLoc(t)
	at := time.Date(2026, time.December, 20, 12, 0, 0, 0, loc)

	end := period.SubscriptionEnd(at)
	require.Equal(t, 2027, end.Year())
	require.Equal(t, time.January, end.Month())
	require.Equal(t, 5, end.Day())
}
