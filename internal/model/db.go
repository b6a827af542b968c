package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderTypeDonation     = "donation"
	OrderTypeSubscription = "subscription"
)

// Payment statuses. pending is the only non-terminal state.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Order payment_status values mirror the payment's terminal state.
const (
	OrderPending = "pending"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
)

const (
	SubscriptionPending = "pending"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type User struct {
	ID          string `gorm:"primaryKey;size:36;not null"` // uuid
	Email       string `gorm:"size:255;uniqueIndex;not null"`
	DisplayName string `gorm:"size:128"`
	IsCreator   bool   `gorm:"index;not null"`

	// Creator funding progress. CurrentAmount is only ever mutated by
	// an atomic increment on a verified completed donation.
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GoalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	SubscriptionStatus    string `gorm:"size:32"`
	SubscriptionExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderSequence is the single-row counter behind human-readable order
// numbers. Incremented with an atomic update, never read-modify-write.
type OrderSequence struct {
	ID              uint  `gorm:"primaryKey"`
	LastOrderNumber int64 `gorm:"not null"`
}

type Order struct {
	ID          uint    `gorm:"primaryKey"`
	OrderNumber string  `gorm:"size:32;uniqueIndex;not null"` // ORD-000042
	OrderType   string  `gorm:"size:32;index;not null"`       // donation, subscription
	UserID      *string `gorm:"size:36;index"`                // nil for anonymous donations
	CreatorID   *string `gorm:"size:36;index"`                // nil for subscriptions

	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"size:8;not null"`

	PaymentStatus string `gorm:"size:32;index;not null"` // pending, paid, failed
	TransactionID string `gorm:"size:64;index"`

	BillingName     string `gorm:"size:128"`
	BillingEmail    string `gorm:"size:255"`
	GatewayResponse string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Payment struct {
	ID      uint    `gorm:"primaryKey"`
	OrderID uint    `gorm:"index;not null"`
	UserID  *string `gorm:"size:36;index"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:8;not null"`

	// TransactionID is the sole correlation key between the ledger and
	// the gateway, and the idempotency key for webhook deliveries.
	TransactionID string `gorm:"size:64;uniqueIndex;not null"`

	Status               string `gorm:"size:32;index;not null"` // pending, completed, failed
	GatewayTransactionID string `gorm:"size:128"`
	GatewayResponse      string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Donation struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"index;not null"`
	CreatorID string `gorm:"size:36;index;not null"`

	DonorName   string `gorm:"size:128"`
	DonorEmail  string `gorm:"size:255"`
	Message     string `gorm:"size:500"`
	IsAnonymous bool

	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentStatus string          `gorm:"size:32;index;not null"` // pending, completed, failed

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subscription struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID uint   `gorm:"index;not null"`
	UserID  string `gorm:"size:36;index;not null"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status string          `gorm:"size:32;index;not null"` // pending, active, expired

	StartsAt  *time.Time
	ExpiresAt *time.Time
	PaymentID string `gorm:"size:64;index"` // transaction id of the funding payment

	CreatedAt time.Time
	UpdatedAt time.Time
}
