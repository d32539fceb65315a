package repositories

import (
	"context"
	"errors"

	"studygate-bot/internal/database/models"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetActive returns the latest active row for (user, plan), or nil when the
// user holds no tracked subscription for that plan.
func (r *SubscriptionRepository) GetActive(ctx context.Context, userID int64, planID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ? AND active = ?", userID, planID, true).
		Order("end_ts DESC").
		Preload("Plan").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// RefreshInvite stores a newly issued credential and clears the reminder
// throttle without touching the billing period.
func (r *SubscriptionRepository) RefreshInvite(ctx context.Context, id string, link string) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"invite_link":          link,
			"last_notification_ts": nil,
		}).Error
}

func (r *SubscriptionRepository) SetNotified(ctx context.Context, id string, ts int64) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).
		Update("last_notification_ts", ts).Error
}

func (r *SubscriptionRepository) MarkRemoved(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "removed": true}).Error
}

// ListUnpaidForPeriod returns active subscriptions that do not reflect a
// fully paid (month, year), skipping rows notified after the throttle mark.
func (r *SubscriptionRepository) ListUnpaidForPeriod(ctx context.Context, month, year int, notifiedBefore int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("NOT (period_month = ? AND period_year = ? AND part_paid = ?)", month, year, models.PartFull).
		Where("last_notification_ts IS NULL OR last_notification_ts < ?", notifiedBefore).
		Preload("Plan").
		Order("user_id").
		Find(&subs).Error
	return subs, err
}

// ListExpiringPaid returns paid-current subscriptions whose end_ts falls in
// [fromTS, toTS] — the deadline-reminder audience.
func (r *SubscriptionRepository) ListExpiringPaid(ctx context.Context, month, year int, fromTS, toTS int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("end_ts BETWEEN ? AND ?", fromTS, toTS).
		Where("period_month = ? AND period_year = ? AND part_paid = ?", month, year, models.PartFull).
		Preload("Plan").
		Order("end_ts").
		Find(&subs).Error
	return subs, err
}

// ListExpiredUnpaid returns active subscriptions past end_ts that are not
// fully paid for (month, year) — the removal-sweep audience.
func (r *SubscriptionRepository) ListExpiredUnpaid(ctx context.Context, month, year int, nowTS int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("end_ts < ?", nowTS).
		Where("NOT (period_month = ? AND period_year = ? AND part_paid = ?)", month, year, models.PartFull).
		Preload("Plan").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Preload("Plan").
		Order("end_ts DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Preload("Plan").
		Order("end_ts DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("active = ?", true).Count(&n).Error
	return n, err
}

func (r *SubscriptionRepository) CountPaidForPeriod(ctx context.Context, month, year int, nowTS int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("active = ? AND period_month = ? AND period_year = ? AND part_paid = ? AND end_ts > ?",
			true, month, year, models.PartFull, nowTS).
		Count(&n).Error
	return n, err
}
