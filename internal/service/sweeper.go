package service

import (
	"context"
	"log/slog"
	"time"

	"tipjar-backend/internal/repository"

	"gorm.io/gorm"
)

// Sweeper expires checkouts the payer abandoned: rows still pending
// after the TTL are moved to their failed/expired terminal state. The
// sweep uses the same conditional updates as the reconciler, so it
// cannot race a concurrent webhook into a double transition.
type Sweeper struct {
	db       *gorm.DB
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger

	paymentRepo      repository.PaymentRepository
	orderRepo        repository.OrderRepository
	donationRepo     repository.DonationRepository
	subscriptionRepo repository.SubscriptionRepository
}

func NewSweeper(
	db *gorm.DB,
	ttl, interval time.Duration,
	logger *slog.Logger,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	donationRepo repository.DonationRepository,
	subscriptionRepo repository.SubscriptionRepository,
) *Sweeper {
	return &Sweeper{
		db:               db,
		ttl:              ttl,
		interval:         interval,
		logger:           logger,
		paymentRepo:      paymentRepo,
		orderRepo:        orderRepo,
		donationRepo:     donationRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("pending sweep failed", "error", err)
			}
		}
	}
}

// Sweep performs one pass over stale pending rows.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.ttl)

	var payments, orders, donations, subscriptions int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if payments, err = s.paymentRepo.FailStalePending(ctx, tx, cutoff); err != nil {
			return err
		}
		if orders, err = s.orderRepo.FailStalePending(ctx, tx, cutoff); err != nil {
			return err
		}
		if donations, err = s.donationRepo.FailStalePending(ctx, tx, cutoff); err != nil {
			return err
		}
		subscriptions, err = s.subscriptionRepo.ExpireStalePending(ctx, tx, cutoff)
		return err
	})
	if err != nil {
		return err
	}

	if payments+orders+donations+subscriptions > 0 {
		s.logger.Info("expired stale pending records",
			"payments", payments,
			"orders", orders,
			"donations", donations,
			"subscriptions", subscriptions)
	}

	return nil
}
