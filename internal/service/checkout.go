package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/client"
	"tipjar-backend/internal/config"
	"tipjar-backend/internal/dto"
	"tipjar-backend/internal/model"
	"tipjar-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutService is the order/payment factory: it turns a payer intent
// into pending ledger rows plus a gateway redirect URL.
type CheckoutService interface {
	Initiate(ctx context.Context, userID string, req *dto.InitiateRequest) (*dto.InitiateResponse, error)
}

type checkoutServiceImpl struct {
	db          *gorm.DB
	gateway     client.GatewayClient
	baseURL     string
	frontendURL string
	payCfg      config.Payment

	sequenceRepo     repository.SequenceRepository
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	donationRepo     repository.DonationRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
}

func NewCheckoutService(
	db *gorm.DB,
	gateway client.GatewayClient,
	baseURL string,
	frontendURL string,
	payCfg config.Payment,
	sequenceRepo repository.SequenceRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	donationRepo repository.DonationRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		gateway:          gateway,
		baseURL:          baseURL,
		frontendURL:      frontendURL,
		payCfg:           payCfg,
		sequenceRepo:     sequenceRepo,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		donationRepo:     donationRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
	}
}

func (s *checkoutServiceImpl) Initiate(ctx context.Context, userID string, req *dto.InitiateRequest) (*dto.InitiateResponse, error) {
	switch req.OrderType {
	case model.OrderTypeDonation:
		return s.initiateDonation(ctx, userID, req)
	case model.OrderTypeSubscription:
		return s.initiateSubscription(ctx, userID, req)
	default:
		return nil, apperr.Validation("unknown order type %q", req.OrderType)
	}
}

func (s *checkoutServiceImpl) initiateDonation(ctx context.Context, userID string, req *dto.InitiateRequest) (*dto.InitiateResponse, error) {
	if req.CreatorID == "" {
		return nil, apperr.Validation("creatorId is required for donations")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("donation amount must be positive")
	}
	minAmount := decimal.NewFromInt(s.payCfg.MinDonationAmount)
	if req.Amount.LessThan(minAmount) {
		return nil, apperr.Validation("donation amount must be at least %s %s", minAmount, s.payCfg.Currency)
	}

	creator, err := s.userRepo.FindByID(ctx, req.CreatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("creator %s not found", req.CreatorID)
		}
		return nil, apperr.Persistence("load creator", err)
	}
	if !creator.IsCreator {
		return nil, apperr.Validation("user %s is not a creator", req.CreatorID)
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}
	donorEmail := req.DonorEmail
	if donorEmail == "" {
		donorEmail = "guest@example.com"
	}

	creatorID := req.CreatorID
	order := &model.Order{
		OrderType:     model.OrderTypeDonation,
		CreatorID:     &creatorID,
		TotalAmount:   req.Amount,
		Currency:      s.payCfg.Currency,
		PaymentStatus: model.OrderPending,
		BillingName:   donorName,
		BillingEmail:  donorEmail,
	}
	if userID != "" {
		order.UserID = &userID
	}

	var donation *model.Donation
	transactionID, err := s.createPendingRows(ctx, order, func(tx *gorm.DB) error {
		donation = &model.Donation{
			OrderID:       order.ID,
			CreatorID:     req.CreatorID,
			DonorName:     donorName,
			DonorEmail:    donorEmail,
			Message:       req.Message,
			IsAnonymous:   req.IsAnonymous,
			Amount:        req.Amount,
			PaymentStatus: model.PaymentPending,
		}
		return s.donationRepo.Create(ctx, tx, donation)
	})
	if err != nil {
		return nil, err
	}

	checkout := &model.CheckoutRequest{
		SuccessURL: fmt.Sprintf("%s/donation-success?transaction_id=%s&donation_id=%d",
			s.frontendURL, transactionID, donation.ID),
		CancelURL:  s.frontendURL + "/donation-cancel",
		WebhookURL: s.baseURL + "/api/payments/webhook",
		Fullname:   donorName,
		Email:      donorEmail,
		Amount:     req.Amount.String(),
	}

	paymentURL, err := s.callCheckout(ctx, checkout)
	if err != nil {
		return nil, err
	}

	return &dto.InitiateResponse{
		Success:       true,
		PaymentURL:    paymentURL,
		TransactionID: transactionID,
		OrderID:       order.ID,
		DonationID:    donation.ID,
	}, nil
}

func (s *checkoutServiceImpl) initiateSubscription(ctx context.Context, userID string, req *dto.InitiateRequest) (*dto.InitiateResponse, error) {
	if userID == "" {
		return nil, apperr.Validation("authentication required for subscriptions")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, apperr.Persistence("load user", err)
	}

	// Subscription fee is fixed; the caller does not pick the amount.
	amount := decimal.NewFromInt(s.payCfg.SubscriptionFee)

	order := &model.Order{
		OrderType:     model.OrderTypeSubscription,
		UserID:        &userID,
		TotalAmount:   amount,
		Currency:      s.payCfg.Currency,
		PaymentStatus: model.OrderPending,
		BillingName:   user.DisplayName,
		BillingEmail:  user.Email,
	}

	transactionID, err := s.createPendingRows(ctx, order, func(tx *gorm.DB) error {
		return s.subscriptionRepo.Create(ctx, tx, &model.Subscription{
			OrderID: order.ID,
			UserID:  userID,
			Amount:  amount,
			Status:  model.SubscriptionPending,
		})
	})
	if err != nil {
		return nil, err
	}

	checkout := &model.CheckoutRequest{
		SuccessURL: fmt.Sprintf("%s/subscription-success?transaction_id=%s", s.frontendURL, transactionID),
		CancelURL:  s.frontendURL + "/subscription-cancel",
		WebhookURL: s.baseURL + "/api/payments/webhook",
		Fullname:   user.DisplayName,
		Email:      user.Email,
		Amount:     amount.String(),
	}

	paymentURL, err := s.callCheckout(ctx, checkout)
	if err != nil {
		return nil, err
	}

	return &dto.InitiateResponse{
		Success:       true,
		PaymentURL:    paymentURL,
		TransactionID: transactionID,
		OrderID:       order.ID,
	}, nil
}

// createPendingRows writes the order, its business placeholder and the
// payment in one transaction, issuing the order number and transaction id.
// The transaction id composes a fixed prefix, the order id and a
// high-resolution timestamp, so it is unique without a central allocator.
func (s *checkoutServiceImpl) createPendingRows(ctx context.Context, order *model.Order, createPlaceholder func(tx *gorm.DB) error) (string, error) {
	seq, err := s.sequenceRepo.NextOrderNumber(ctx)
	if err != nil {
		return "", apperr.Persistence("next order number", err)
	}
	order.OrderNumber = fmt.Sprintf("ORD-%06d", seq)

	var transactionID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		transactionID = fmt.Sprintf("TXN_%d_%d", order.ID, time.Now().UnixMilli())
		if err := s.orderRepo.SetTransactionID(ctx, tx, order.ID, transactionID); err != nil {
			return fmt.Errorf("set order transaction id: %w", err)
		}
		order.TransactionID = transactionID

		if err := createPlaceholder(tx); err != nil {
			return fmt.Errorf("store placeholder: %w", err)
		}

		return s.paymentRepo.Create(ctx, tx, &model.Payment{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			Currency:      order.Currency,
			TransactionID: transactionID,
			Status:        model.PaymentPending,
		})
	})
	if err != nil {
		return "", apperr.Persistence("create pending records", err)
	}

	return transactionID, nil
}

// callCheckout performs the gateway checkout call. On failure the pending
// rows stay as-is: the sweeper expires them after the configured TTL.
func (s *checkoutServiceImpl) callCheckout(ctx context.Context, req *model.CheckoutRequest) (string, error) {
	result, err := s.gateway.CreateCheckout(ctx, req)
	if err != nil {
		return "", apperr.Gateway("gateway checkout call", err)
	}
	if !result.Status || result.PaymentURL == "" {
		msg := result.Message
		if msg == "" {
			msg = "gateway returned no payment url"
		}
		return "", apperr.Gateway("payment initiation failed: "+msg, nil)
	}

	return result.PaymentURL, nil
}
