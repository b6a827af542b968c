package repository

import (
	"context"
	"time"

	"tipjar-backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	TransitionStatus(ctx context.Context, tx *gorm.DB, transactionID, status, gatewayTransactionID, gatewayResponse string) (bool, error)
	FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// TransitionStatus moves a payment into a terminal status. The update is
// conditional on the row not already being completed, so a completed
// payment can never be downgraded and the caller learns from the return
// value whether this call performed the transition — that affected-row
// check is the side-effect idempotency gate.
func (r *paymentRepoImpl) TransitionStatus(ctx context.Context, tx *gorm.DB, transactionID, status, gatewayTransactionID, gatewayResponse string) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_id = ? AND status <> ?", transactionID, model.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":                 status,
			"gateway_transaction_id": gatewayTransactionID,
			"gateway_response":       gatewayResponse,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		// Already completed: refresh the gateway snapshot only.
		err := tx.WithContext(ctx).Model(&model.Payment{}).
			Where("transaction_id = ?", transactionID).
			Updates(map[string]interface{}{
				"gateway_transaction_id": gatewayTransactionID,
				"gateway_response":       gatewayResponse,
				"updated_at":             time.Now(),
			}).Error
		return false, err
	}

	return true, nil
}

func (r *paymentRepoImpl) FailStalePending(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Updates(map[string]interface{}{
			"status":     model.PaymentFailed,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}
