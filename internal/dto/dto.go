package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type InitiateRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	OrderType string          `json:"orderType"`
	CreatorID string          `json:"creatorId,omitempty"`

	DonorName   string `json:"donorName,omitempty"`
	DonorEmail  string `json:"donorEmail,omitempty"`
	Message     string `json:"message,omitempty"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
}

type InitiateResponse struct {
	Success       bool   `json:"success"`
	PaymentURL    string `json:"paymentUrl"`
	TransactionID string `json:"transactionId"`
	OrderID       uint   `json:"orderId"`
	DonationID    uint   `json:"donationId,omitempty"`
}

type WebhookRequest struct {
	TransactionID string `json:"transaction_id"`
	// Status and Amount come straight from the gateway and are never
	// trusted; verification re-derives the status. Raw because some
	// gateway versions send a bool, others a string.
	Status json.RawMessage `json:"status,omitempty"`
	Amount json.RawMessage `json:"amount,omitempty"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type VerifyRequest struct {
	TransactionID string `json:"transaction_id"`
}

type VerifyResponse struct {
	Success          bool            `json:"success"`
	PaymentStatus    string          `json:"payment_status,omitempty"`
	VerificationData json.RawMessage `json:"verification_data,omitempty"`
	Order            *OrderSummary   `json:"order,omitempty"`
	Error            string          `json:"error,omitempty"`
}

type OrderSummary struct {
	ID            uint            `json:"id"`
	OrderNumber   string          `json:"order_number"`
	OrderType     string          `json:"order_type"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"payment_status"`
	TransactionID string          `json:"transaction_id"`
}

type CreatorProgressResponse struct {
	CreatorID     string          `json:"creatorId"`
	DisplayName   string          `json:"displayName"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	GoalAmount    decimal.Decimal `json:"goalAmount"`
	Percent       decimal.Decimal `json:"percent"`
}

type DonationSummary struct {
	ID        uint            `json:"id"`
	DonorName string          `json:"donorName"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
	CreatedAt string          `json:"createdAt"`
}
