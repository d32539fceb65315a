package repositories

import (
	"context"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(ctx context.Context, planID uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).First(&plan, "id = ?", planID).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("title").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) ListActiveByCategory(ctx context.Context, categoryID uint) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND category_id = ?", true, categoryID).
		Order("title").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *PlanRepository) Update(ctx context.Context, planID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Plan{}).Where("id = ?", planID).Updates(fields).Error
}

// SoftDelete deactivates a plan instead of removing it, so existing
// subscriptions keep their reference.
func (r *PlanRepository) SoftDelete(ctx context.Context, planID uint) error {
	return r.db.WithContext(ctx).Model(&models.Plan{}).Where("id = ?", planID).
		Update("is_active", false).Error
}
