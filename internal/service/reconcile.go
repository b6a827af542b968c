package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/client"
	"tipjar-backend/internal/config"
	"tipjar-backend/internal/model"
	"tipjar-backend/internal/repository"

	"gorm.io/gorm"
)

// ReconcileOutcome is the result of one verify-then-transition pass.
type ReconcileOutcome struct {
	// PaymentStatus is the payment's effective stored status after the
	// pass: the newly computed terminal status, or completed when the
	// row had already completed and cannot be downgraded.
	PaymentStatus string
	// Applied reports whether this call performed the transition into
	// completed and therefore executed the side effect.
	Applied      bool
	Verification json.RawMessage
	Order        *model.Order
}

// ReconcilerService owns the trust boundary: gateway webhooks and client
// polls both funnel into the same verify-then-transition core, which
// never trusts the delivered payload and always re-verifies the
// transaction against the gateway.
type ReconcilerService interface {
	ProcessWebhook(ctx context.Context, transactionID string) (*ReconcileOutcome, error)
	VerifyTransaction(ctx context.Context, transactionID string) (*ReconcileOutcome, error)
}

type reconcilerImpl struct {
	db      *gorm.DB
	gateway client.GatewayClient
	payCfg  config.Payment
	logger  *slog.Logger

	paymentRepo      repository.PaymentRepository
	orderRepo        repository.OrderRepository
	donationRepo     repository.DonationRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
}

func NewReconcilerService(
	db *gorm.DB,
	gateway client.GatewayClient,
	payCfg config.Payment,
	logger *slog.Logger,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	donationRepo repository.DonationRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
) ReconcilerService {
	return &reconcilerImpl{
		db:               db,
		gateway:          gateway,
		payCfg:           payCfg,
		logger:           logger,
		paymentRepo:      paymentRepo,
		orderRepo:        orderRepo,
		donationRepo:     donationRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
	}
}

func (s *reconcilerImpl) ProcessWebhook(ctx context.Context, transactionID string) (*ReconcileOutcome, error) {
	outcome, err := s.reconcile(ctx, transactionID)
	if err == nil {
		s.logger.Info("webhook reconciled",
			"transaction_id", transactionID,
			"payment_status", outcome.PaymentStatus,
			"side_effect_applied", outcome.Applied)
	}
	return outcome, err
}

func (s *reconcilerImpl) VerifyTransaction(ctx context.Context, transactionID string) (*ReconcileOutcome, error) {
	return s.reconcile(ctx, transactionID)
}

func (s *reconcilerImpl) reconcile(ctx context.Context, transactionID string) (*ReconcileOutcome, error) {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("unknown transaction %s", transactionID)
		}
		return nil, apperr.Persistence("load payment", err)
	}

	verification, err := s.gateway.VerifyPayment(ctx, transactionID)
	if err != nil {
		// Nothing is persisted here: a webhook caller gets a 5xx so the
		// gateway redelivers; a later delivery can still resolve the row.
		return nil, apperr.Gateway("gateway verify call", err)
	}

	// Fail-closed: completed requires both conditions, anything else —
	// including ambiguous gateway data — resolves to failed.
	newStatus := model.PaymentFailed
	if verification.Status && verification.PaymentStatus == model.PaymentCompleted {
		newStatus = model.PaymentCompleted
	}

	var outcome *ReconcileOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transitioned, err := s.paymentRepo.TransitionStatus(ctx, tx,
			transactionID, newStatus, verification.TransactionID, string(verification.Raw))
		if err != nil {
			return err
		}

		// The conditional update only skips rows that are already
		// completed, so a no-op means the stored status is completed and
		// must not be downgraded — even when this verify said failed.
		effective := newStatus
		if !transitioned {
			effective = model.PaymentCompleted
		}
		applied := transitioned && effective == model.PaymentCompleted

		order, err := s.orderRepo.FindByID(ctx, tx, payment.OrderID)
		if err != nil {
			return err
		}

		mirror := model.OrderFailed
		if effective == model.PaymentCompleted {
			mirror = model.OrderPaid
		}
		if err := s.orderRepo.MirrorPaymentStatus(ctx, tx,
			order.ID, mirror, transactionID, string(verification.Raw)); err != nil {
			return err
		}
		order.PaymentStatus = mirror

		switch order.OrderType {
		case model.OrderTypeDonation:
			if err := s.donationRepo.UpdateStatusByOrderID(ctx, tx, order.ID, effective); err != nil {
				return err
			}
			if applied {
				if err := s.userRepo.IncrementBalance(ctx, tx, *order.CreatorID, payment.Amount); err != nil {
					return err
				}
			}
		case model.OrderTypeSubscription:
			if applied {
				now := time.Now()
				expires := now.Add(s.payCfg.SubscriptionPeriod)
				if err := s.subscriptionRepo.Activate(ctx, tx, order.ID, now, expires, transactionID); err != nil {
					return err
				}
				if err := s.userRepo.ActivateSubscription(ctx, tx, *order.UserID, expires); err != nil {
					return err
				}
			}
			// On failure the subscription row stays pending until the
			// sweeper expires it.
		}

		outcome = &ReconcileOutcome{
			PaymentStatus: effective,
			Applied:       applied,
			Verification:  verification.Raw,
			Order:         order,
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence("apply payment transition", err)
	}

	return outcome, nil
}
