package repositories

import (
	"context"
	"errors"
	"time"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureUser creates the user on first contact. The referrer is recorded
// only at creation time and never rewritten; on later contacts only the
// username is refreshed.
func (r *UserRepository) EnsureUser(ctx context.Context, userID int64, referredBy *int64, username string) error {
	var existing models.User
	err := r.db.WithContext(ctx).First(&existing, "user_id = ?", userID).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user := models.User{
			UserID:     userID,
			ReferredBy: referredBy,
			Username:   username,
		}
		return r.db.WithContext(ctx).Create(&user).Error
	}

	return r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"username":   username,
		"updated_at": time.Now(),
	}).Error
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) AddCashback(ctx context.Context, userID int64, cents int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("cashback_cents", gorm.Expr("cashback_cents + ?", cents)).Error
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
