package repositories

import (
	"context"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, methodID uint) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.WithContext(ctx).First(&m, "id = ?", methodID).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) ListActive(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&methods).Error
	return methods, err
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).Order("id").Find(&methods).Error
	return methods, err
}

func (r *PaymentMethodRepository) Toggle(ctx context.Context, methodID uint) error {
	return r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", methodID).
		Update("is_active", gorm.Expr("NOT is_active")).Error
}

func (r *PaymentMethodRepository) UpdateDetails(ctx context.Context, methodID uint, details string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", methodID).
		Update("details", details).Error
}
