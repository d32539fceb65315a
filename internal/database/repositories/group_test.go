package repositories

import (
	"context"
	"fmt"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studygate-bot/internal/database/models"
)

func newGroupRepo(t *testing.T) (*GroupRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ManagedGroup{}))

	return NewGroupRepository(db), db
}

func TestAddGroupFromChatEvent(t *testing.T) {
	repo, db := newGroupRepo(t)
	ctx := context.Background()

	// Chat.Type arrives as the bot library's named string type.
	chatType := tgmodels.ChatType("supergroup")
	require.NoError(t, repo.Add(ctx, -100800, "Физика 11А", string(chatType)))

	var group models.ManagedGroup
	require.NoError(t, db.First(&group, "chat_id = ?", -100800).Error)
	require.Equal(t, "supergroup", group.Type)
	require.True(t, group.IsDefault)

	// Re-adding updates the title without duplicating the row or stealing
	// the default flag.
	require.NoError(t, repo.Add(ctx, -100801, "Химия", string(tgmodels.ChatType("group"))))
	require.NoError(t, repo.Add(ctx, -100800, "Физика 11Б", string(chatType)))

	var count int64
	require.NoError(t, db.Model(&models.ManagedGroup{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	require.NoError(t, db.First(&group, "chat_id = ?", -100800).Error)
	require.Equal(t, "Физика 11Б", group.Title)
	require.True(t, group.IsDefault)

	group = models.ManagedGroup{}
	require.NoError(t, db.First(&group, "chat_id = ?", -100801).Error)
	require.False(t, group.IsDefault)
}

func TestRemoveGroupAndDefaultFallback(t *testing.T) {
	repo, _ := newGroupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, -100800, "Физика", "supergroup"))
	require.NoError(t, repo.Add(ctx, -100801, "Химия", "group"))
	require.NoError(t, repo.Remove(ctx, -100800))

	// The default marker left with the removed group; any remaining group
	// still serves as fallback.
	group, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(-100801), group.ChatID)
}
