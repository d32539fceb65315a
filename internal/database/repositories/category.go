package repositories

import (
	"context"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID uint) (*models.Category, error) {
	var cat models.Category
	err := r.db.WithContext(ctx).First(&cat, "id = ?", categoryID).Error
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&cats).Error
	return cats, err
}

func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, categoryID uint, name, description string) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", categoryID).
		Updates(map[string]interface{}{"name": name, "description": description}).Error
}

// DeleteCascade deactivates the category together with every plan in it.
// Always an explicit admin choice, never implicit.
func (r *CategoryRepository) DeleteCascade(ctx context.Context, categoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Plan{}).Where("category_id = ?", categoryID).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Where("id = ?", categoryID).
			Update("is_active", false).Error
	})
}

// DeleteTransfer moves the category's plans to another category before
// deactivating it.
func (r *CategoryRepository) DeleteTransfer(ctx context.Context, categoryID, targetID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Plan{}).Where("category_id = ?", categoryID).
			Update("category_id", targetID).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Where("id = ?", categoryID).
			Update("is_active", false).Error
	})
}
