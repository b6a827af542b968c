package repository

import (
	"context"
	"time"

	"tipjar-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	IncrementBalance(ctx context.Context, tx *gorm.DB, creatorID string, amount decimal.Decimal) error
	ActivateSubscription(ctx context.Context, tx *gorm.DB, userID string, expiresAt time.Time) error
	Seed(ctx context.Context) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// IncrementBalance credits a creator with a single atomic increment at
// the store level. Concurrent donations must not lose updates, so the
// arithmetic happens in the UPDATE itself.
func (r *userRepoImpl) IncrementBalance(ctx context.Context, tx *gorm.DB, creatorID string, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", creatorID).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) ActivateSubscription(ctx context.Context, tx *gorm.DB, userID string, expiresAt time.Time) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"subscription_status":     model.SubscriptionActive,
			"subscription_expires_at": expiresAt,
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Seed creates a demo creator for local development.
func (r *userRepoImpl) Seed(ctx context.Context) error {
	demo := &model.User{
		ID:          uuid.NewString(),
		Email:       "creator@example.com",
		DisplayName: "Demo Creator",
		IsCreator:   true,
		GoalAmount:  decimal.NewFromInt(10000),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(demo).Error
}
