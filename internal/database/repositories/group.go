package repositories

import (
	"context"
	"errors"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Add registers a group the bot was invited to. The very first registered
// group automatically becomes the default access group.
func (r *GroupRepository) Add(ctx context.Context, chatID int64, title, chatType string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := models.ManagedGroup{ChatID: chatID, Title: title, Type: chatType}
		err := tx.Where("chat_id = ?", chatID).
			Assign(map[string]interface{}{"title": title, "type": chatType}).
			FirstOrCreate(&group).Error
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ManagedGroup{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 1 {
			return tx.Model(&models.ManagedGroup{}).
				Where("chat_id = ?", chatID).
				Update("is_default", true).Error
		}
		return nil
	})
}

func (r *GroupRepository) Remove(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).Delete(&models.ManagedGroup{}, "chat_id = ?", chatID).Error
}

func (r *GroupRepository) SetDefault(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ManagedGroup{}).Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.ManagedGroup{}).Where("chat_id = ?", chatID).
			Update("is_default", true).Error
	})
}

// GetDefault returns the default group, falling back to any registered
// group when none is marked default.
func (r *GroupRepository) GetDefault(ctx context.Context) (*models.ManagedGroup, error) {
	var group models.ManagedGroup
	err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&group).Error
	if err == nil {
		return &group, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]models.ManagedGroup, error) {
	var groups []models.ManagedGroup
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&groups).Error
	return groups, err
}
