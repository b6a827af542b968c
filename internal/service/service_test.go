package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"tipjar-backend/internal/client"
	"tipjar-backend/internal/config"
	"tipjar-backend/internal/model"
	"tipjar-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGateway struct {
	checkoutResult *model.CheckoutResult
	checkoutErr    error
	checkoutCalls  int

	verifyResult *model.VerifyResult
	verifyErr    error
	verifyCalls  int
}

func (g *stubGateway) CreateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResult, error) {
	g.checkoutCalls++
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return g.checkoutResult, nil
}

func (g *stubGateway) VerifyPayment(ctx context.Context, transactionID string) (*model.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}

func verifyCompleted(transactionID string) *model.VerifyResult {
	raw := fmt.Sprintf(`{"status":true,"payment_status":"completed","transaction_id":%q}`, transactionID)
	return &model.VerifyResult{
		Status:        true,
		PaymentStatus: "completed",
		TransactionID: transactionID,
		CustomerName:  "Test Customer",
		Raw:           json.RawMessage(raw),
	}
}

func verifyFailed(transactionID string) *model.VerifyResult {
	raw := fmt.Sprintf(`{"status":false,"payment_status":"failed","transaction_id":%q}`, transactionID)
	return &model.VerifyResult{
		Status:        false,
		PaymentStatus: "failed",
		TransactionID: transactionID,
		Raw:           json.RawMessage(raw),
	}
}

type fixture struct {
	db      *gorm.DB
	gateway *stubGateway
	payCfg  config.Payment

	sequenceRepo     repository.SequenceRepository
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	donationRepo     repository.DonationRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository

	checkout   CheckoutService
	reconciler ReconcilerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, client.Migrate(db))

	gateway := &stubGateway{
		checkoutResult: &model.CheckoutResult{
			Status:     true,
			PaymentURL: "https://gateway.test/redirect/abc",
		},
	}

	payCfg := config.Payment{
		Currency:           "BDT",
		MinDonationAmount:  10,
		SubscriptionFee:    100,
		SubscriptionPeriod: 30 * 24 * time.Hour,
		PendingTTL:         24 * time.Hour,
		SweepInterval:      time.Hour,
	}

	f := &fixture{
		db:               db,
		gateway:          gateway,
		payCfg:           payCfg,
		sequenceRepo:     repository.NewSequenceRepository(db),
		orderRepo:        repository.NewOrderRepository(db),
		paymentRepo:      repository.NewPaymentRepository(db),
		donationRepo:     repository.NewDonationRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
		userRepo:         repository.NewUserRepository(db),
	}

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.checkout = NewCheckoutService(
		db, gateway, "https://api.tipjar.test", "https://tipjar.test", payCfg,
		f.sequenceRepo, f.orderRepo, f.paymentRepo, f.donationRepo, f.subscriptionRepo, f.userRepo,
	)
	f.reconciler = NewReconcilerService(
		db, gateway, payCfg, testLogger,
		f.paymentRepo, f.orderRepo, f.donationRepo, f.subscriptionRepo, f.userRepo,
	)

	return f
}

func (f *fixture) seedCreator(t *testing.T) *model.User {
	t.Helper()
	creator := &model.User{
		ID:          uuid.NewString(),
		Email:       fmt.Sprintf("%s@creators.test", uuid.NewString()),
		DisplayName: "Creator",
		IsCreator:   true,
		GoalAmount:  decimal.NewFromInt(10000),
	}
	require.NoError(t, f.userRepo.Create(context.Background(), creator))
	return creator
}

func (f *fixture) seedSupporter(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{
		ID:          uuid.NewString(),
		Email:       fmt.Sprintf("%s@supporters.test", uuid.NewString()),
		DisplayName: "Supporter",
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}
