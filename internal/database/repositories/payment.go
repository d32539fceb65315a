package repositories

import (
	"context"
	"errors"
	"time"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// SaveInvoice persists pending gateway-payment intent before the checkout
// is requested, keyed by the opaque payload.
func (r *PaymentRepository) SaveInvoice(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *PaymentRepository) GetInvoice(ctx context.Context, payload string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).First(&inv, "payload = ?", payload).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PaymentRepository) DeleteInvoice(ctx context.Context, payload string) error {
	return r.db.WithContext(ctx).Delete(&models.Invoice{}, "payload = ?", payload).Error
}

func (r *PaymentRepository) CreateManual(ctx context.Context, mp *models.ManualPayment) error {
	return r.db.WithContext(ctx).Create(mp).Error
}

// GetPendingManual loads a ticket only while it is still reviewable.
func (r *PaymentRepository) GetPendingManual(ctx context.Context, id string) (*models.ManualPayment, error) {
	var mp models.ManualPayment
	err := r.db.WithContext(ctx).Preload("Plan").
		First(&mp, "id = ? AND status = ?", id, models.ManualStatusPending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

func (r *PaymentRepository) ListPendingManual(ctx context.Context) ([]models.ManualPayment, error) {
	var tickets []models.ManualPayment
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("status = ?", models.ManualStatusPending).
		Order("created_at").
		Find(&tickets).Error
	return tickets, err
}

// ReviewManual moves a pending ticket to its terminal status.
func (r *PaymentRepository) ReviewManual(ctx context.Context, id string, status string, adminID int64, reviewedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ManualPayment{}).
		Where("id = ? AND status = ?", id, models.ManualStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_id":    adminID,
			"reviewed_at": reviewedAt,
		}).Error
}
