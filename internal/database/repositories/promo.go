package repositories

import (
	"context"
	"errors"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).First(&promo, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *PromoRepository) GetByID(ctx context.Context, promoID uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).First(&promo, "id = ?", promoID).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *PromoRepository) HasUsage(ctx context.Context, promoID uint, userID int64) (bool, error) {
	var usage models.PromoUsage
	err := r.db.WithContext(ctx).
		First(&usage, "promo_id = ? AND user_id = ?", promoID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordUsage inserts the per-user usage row and bumps the counter in one
// transaction. Called only once payment is confirmed.
func (r *PromoRepository) RecordUsage(ctx context.Context, promoID uint, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usage := models.PromoUsage{PromoID: promoID, UserID: userID}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}
		return tx.Model(&models.PromoCode{}).Where("id = ?", promoID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
	})
}

func (r *PromoRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *PromoRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PromoCode{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *PromoRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error
	return promos, err
}
