package repository

import (
	"context"
	"time"

	"tipjar-backend/internal/model"

	"gorm.io/gorm"
)

type DonationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, donation *model.Donation) error
	UpdateStatusByOrderID(ctx context.Context, tx *gorm.DB, orderID uint, status string) error
	FindByOrderID(ctx context.Context, orderID uint) (*model.Donation, error)
	ListCompletedByCreator(ctx context.Context, creatorID string) ([]*model.Donation, error)
	FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type donationRepoImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepoImpl{
		db: db,
	}
}

func (r *donationRepoImpl) Create(ctx context.Context, tx *gorm.DB, donation *model.Donation) error {
	return tx.WithContext(ctx).Create(donation).Error
}

func (r *donationRepoImpl) UpdateStatusByOrderID(ctx context.Context, tx *gorm.DB, orderID uint, status string) error {
	return tx.WithContext(ctx).Model(&model.Donation{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     time.Now(),
		}).Error
}

func (r *donationRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&donation).Error

	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (r *donationRepoImpl) ListCompletedByCreator(ctx context.Context, creatorID string) ([]*model.Donation, error) {
	var donations []*model.Donation
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND payment_status = ?", creatorID, model.PaymentCompleted).
		Order("created_at DESC").
		Find(&donations).Error

	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepoImpl) FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Donation{}).
		Where("payment_status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentFailed,
			"updated_at":     time.Now(),
		})

	return result.RowsAffected, result.Error
}
