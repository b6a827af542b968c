package model

import "encoding/json"

// Wire types for the RupantorPay checkout and verify-payment endpoints.

type CheckoutRequest struct {
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	WebhookURL string `json:"webhook_url"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Amount     string `json:"amount"`
}

type CheckoutResult struct {
	Status     bool   `json:"status"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message"`
}

type VerifyResult struct {
	Status        bool   `json:"status"`
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`

	// Raw is the unparsed verify response, persisted as gateway_response.
	Raw json.RawMessage `json:"-"`
}
