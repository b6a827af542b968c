package repository

import (
	"context"
	"time"

	"tipjar-backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	Activate(ctx context.Context, tx *gorm.DB, orderID uint, start, expires time.Time, paymentID string) error
	FindByOrderID(ctx context.Context, orderID uint) (*model.Subscription, error)
	ExpireStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return tx.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) Activate(ctx context.Context, tx *gorm.DB, orderID uint, start, expires time.Time, paymentID string) error {
	return tx.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionActive,
			"starts_at":  start,
			"expires_at": expires,
			"payment_id": paymentID,
			"updated_at": time.Now(),
		}).Error
}

func (r *subscriptionRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) ExpireStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Subscription{}).
		Where("status = ? AND created_at < ?", model.SubscriptionPending, cutoff).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionExpired,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}
