package sweeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studygate-bot/internal/database/models"
	"studygate-bot/internal/database/repositories"
)

type recordingClient struct {
	texts   map[int64][]string
	buttons map[int64][]string
	banned  []int64
}

func newRecordingClient() *recordingClient {
	return &recordingClient{
		texts:   make(map[int64][]string),
		buttons: make(map[int64][]string),
	}
}

func (c *recordingClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	c.texts[chatID] = append(c.texts[chatID], text)
	return nil
}

func (c *recordingClient) SendMessageButtons(ctx context.Context, chatID int64, text string, kb *tgmodels.InlineKeyboardMarkup) error {
	c.buttons[chatID] = append(c.buttons[chatID], text)
	return nil
}

func (c *recordingClient) CreateInviteLink(ctx context.Context, chatID int64, expire time.Duration, memberLimit int) (string, error) {
	return "https://t.me/+sweep", nil
}

func (c *recordingClient) IsBotAdmin(ctx context.Context, chatID int64) (bool, error) {
	return true, nil
}

func (c *recordingClient) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	c.banned = append(c.banned, userID)
	return nil
}

func (c *recordingClient) UnbanMember(ctx context.Context, chatID, userID int64) error { return nil }

func (c *recordingClient) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	return "member", nil
}

func minskDate(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Minsk")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func newTestSweeper(t *testing.T, at time.Time) (*Sweeper, *recordingClient, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Plan{}, &models.Subscription{}))

	loc, err := time.LoadLocation("Europe/Minsk")
	require.NoError(t, err)

	client := newRecordingClient()
	s := New(repositories.NewSubscriptionRepository(db), client, "BYN", loc, zap.NewNop())
	s.now = func() time.Time { return at.In(loc) }

	require.NoError(t, db.Create(&models.Plan{Title: "Физика", PriceCents: 2500, IsActive: true}).Error)

	return s, client, db
}

func seedSub(t *testing.T, db *gorm.DB, userID int64, month, year int, part string, endTS int64) *models.Subscription {
	t.Helper()
	sub := &models.Subscription{
		ID:          uuid.NewString(),
		UserID:      userID,
		PlanID:      1,
		GroupID:     -100700,
		Active:      true,
		StartTS:     endTS - 30*24*3600,
		EndTS:       endTS,
		PeriodMonth: month,
		PeriodYear:  year,
		PartPaid:    part,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestRenewalRemindersSkipPaidCurrent(t *testing.T) {
	at := minskDate(t, 2026, time.April, 1, 10, 0)
	s, client, db := newTestSweeper(t, at)

	endOfGrace := minskDate(t, 2026, time.May, 5, 23, 59).Unix()
	seedSub(t, db, 10, 4, 2026, models.PartFull, endOfGrace) // paid for April
	seedSub(t, db, 20, 3, 2026, models.PartFull, at.Add(4*24*time.Hour).Unix())
	seedSub(t, db, 30, 4, 2026, models.PartNone, endOfGrace)

	sent, err := s.SendRenewalReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Empty(t, client.buttons[10])
	require.Len(t, client.buttons[20], 1)
	require.Len(t, client.buttons[30], 1)
	require.Contains(t, client.buttons[20][0], "Физика")
}

func TestRenewalRemindersThrottle(t *testing.T) {
	at := minskDate(t, 2026, time.April, 1, 10, 0)
	s, client, db := newTestSweeper(t, at)

	sub := seedSub(t, db, 20, 3, 2026, models.PartFull, at.Add(4*24*time.Hour).Unix())

	sent, err := s.SendRenewalReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	var stored models.Subscription
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	require.NotNil(t, stored.LastNotificationTS)
	require.Equal(t, at.Unix(), *stored.LastNotificationTS)

	// An immediate second run is silenced by the cooldown.
	sent, err = s.SendRenewalReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, sent)
	require.Len(t, client.buttons[20], 1)

	// Past the cooldown the reminder goes out again.
	s.now = func() time.Time { return at.Add(21 * time.Hour) }
	sent, err = s.SendRenewalReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, client.buttons[20], 2)
}

func TestDeadlineRemindersOnlyPaidExpiringSoon(t *testing.T) {
	at := minskDate(t, 2026, time.April, 4, 18, 0)
	s, client, db := newTestSweeper(t, at)

	seedSub(t, db, 10, 4, 2026, models.PartFull, at.Add(24*time.Hour).Unix())   // expires tomorrow
	seedSub(t, db, 20, 4, 2026, models.PartFull, at.Add(10*24*time.Hour).Unix()) // far out
	seedSub(t, db, 30, 4, 2026, models.PartNone, at.Add(24*time.Hour).Unix())   // not paid
	seedSub(t, db, 40, 3, 2026, models.PartFull, at.Add(24*time.Hour).Unix())   // stale period

	sent, err := s.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, client.buttons[10], 1)
	require.Empty(t, client.buttons[20])
	require.Empty(t, client.buttons[30])
	require.Empty(t, client.buttons[40])
}

func TestRemoveUnpaidNeverTouchesPaidCurrent(t *testing.T) {
	at := minskDate(t, 2026, time.April, 6, 0, 1)
	s, client, db := newTestSweeper(t, at)

	paid := seedSub(t, db, 10, 4, 2026, models.PartFull, at.Add(29*24*time.Hour).Unix())
	stale := seedSub(t, db, 20, 3, 2026, models.PartFull, at.Add(-time.Hour).Unix())
	never := seedSub(t, db, 30, 4, 2026, models.PartNone, at.Add(-time.Hour).Unix())

	removed, err := s.RemoveUnpaid(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.ElementsMatch(t, []int64{20, 30}, client.banned)
	require.Len(t, client.texts[20], 1)
	require.Len(t, client.texts[30], 1)
	require.Empty(t, client.texts[10])

	var kept models.Subscription
	require.NoError(t, db.First(&kept, "id = ?", paid.ID).Error)
	require.True(t, kept.Active)
	require.False(t, kept.Removed)

	for _, id := range []string{stale.ID, never.ID} {
		var gone models.Subscription
		require.NoError(t, db.First(&gone, "id = ?", id).Error)
		require.False(t, gone.Active)
		require.True(t, gone.Removed)
	}
}

func TestTickFiresOncePerDay(t *testing.T) {
	at := minskDate(t, 2026, time.April, 1, 10, 0)
	s, client, db := newTestSweeper(t, at)

	seedSub(t, db, 20, 3, 2026, models.PartFull, at.Add(4*24*time.Hour).Unix())

	s.tick(context.Background())
	s.tick(context.Background())
	require.Len(t, client.buttons[20], 1)

	// Outside the trigger window nothing fires.
	s.now = func() time.Time { return minskDate(t, 2026, time.April, 2, 10, 0) }
	s.tick(context.Background())
	require.Len(t, client.buttons[20], 1)
}
