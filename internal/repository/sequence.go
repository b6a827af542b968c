package repository

import (
	"context"

	"tipjar-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	NextOrderNumber(ctx context.Context) (int64, error)
}

type sequenceRepoImpl struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepoImpl{
		db: db,
	}
}

// NextOrderNumber atomically increments the single counter row and
// returns the new value. The increment happens as one UPDATE at the
// store level; concurrent callers serialize on the row lock, so numbers
// come out distinct and consecutive.
func (r *sequenceRepoImpl) NextOrderNumber(ctx context.Context) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.OrderSequence{}).
			Where("id = ?", 1).
			Update("last_order_number", gorm.Expr("last_order_number + 1"))
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Counter row missing (fresh store); seed and retry once.
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.OrderSequence{ID: 1, LastOrderNumber: 0}).Error; err != nil {
				return err
			}
			result = tx.Model(&model.OrderSequence{}).
				Where("id = ?", 1).
				Update("last_order_number", gorm.Expr("last_order_number + 1"))
			if result.Error != nil {
				return result.Error
			}
		}

		return tx.Model(&model.OrderSequence{}).
			Where("id = ?", 1).
			Pluck("last_order_number", &next).Error
	})

	return next, err
}
