package repository

import (
	"context"
	"time"

	"tipjar-backend/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	SetTransactionID(ctx context.Context, tx *gorm.DB, orderID uint, transactionID string) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	MirrorPaymentStatus(ctx context.Context, tx *gorm.DB, orderID uint, status, transactionID, gatewayResponse string) error
	FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) SetTransactionID(ctx context.Context, tx *gorm.DB, orderID uint, transactionID string) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("transaction_id", transactionID).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// MirrorPaymentStatus copies the payment's effective terminal state onto
// the order (paid/failed). The write is unconditional: re-confirming the
// same terminal value is a safe no-op.
func (r *orderRepoImpl) MirrorPaymentStatus(ctx context.Context, tx *gorm.DB, orderID uint, status, transactionID, gatewayResponse string) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status":   status,
			"transaction_id":   transactionID,
			"gateway_response": gatewayResponse,
			"updated_at":       time.Now(),
		}).Error
}

func (r *orderRepoImpl) FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("payment_status = ? AND created_at < ?", model.OrderPending, cutoff).
		Updates(map[string]interface{}{
			"payment_status": model.OrderFailed,
			"updated_at":     time.Now(),
		})

	return result.RowsAffected, result.Error
}
