package service

import (
	"context"
	"strings"
	"testing"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/dto"
	"tipjar-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateDonationCreatesPendingPair(t *testing.T) {
	f := newFixture(t)
	creator := f.seedCreator(t)
	ctx := context.Background()

	resp, err := f.checkout.Initiate(ctx, "", &dto.InitiateRequest{
		Amount:     decimal.NewFromInt(500),
		OrderType:  model.OrderTypeDonation,
		CreatorID:  creator.ID,
		DonorName:  "Alex",
		DonorEmail: "alex@test.local",
		Message:    "keep it up",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "https://gateway.test/redirect/abc", resp.PaymentURL)
	assert.True(t, strings.HasPrefix(resp.TransactionID, "TXN_"))
	assert.NotZero(t, resp.OrderID)
	assert.NotZero(t, resp.DonationID)

	payment, err := f.paymentRepo.FindByTransactionID(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, resp.OrderID, payment.OrderID)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(500)))

	order, err := f.orderRepo.FindByID(ctx, f.db, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.PaymentStatus)
	assert.Equal(t, resp.TransactionID, order.TransactionID)
	assert.Equal(t, "ORD-000001", order.OrderNumber)
	assert.Equal(t, model.OrderTypeDonation, order.OrderType)

	donation, err := f.donationRepo.FindByOrderID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, donation.PaymentStatus)
	assert.Equal(t, creator.ID, donation.CreatorID)
	assert.Equal(t, "keep it up", donation.Message)
}

func TestInitiateDonationBelowMinimum(t *testing.T) {
	f := newFixture(t)
	creator := f.seedCreator(t)
	ctx := context.Background()

	_, err := f.checkout.Initiate(ctx, "", &dto.InitiateRequest{
		Amount:    decimal.NewFromInt(5),
		OrderType: model.OrderTypeDonation,
		CreatorID: creator.ID,
	})

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Rejected before any rows were created.
	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.gateway.checkoutCalls)
}

func TestInitiateDonationMissingCreator(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Initiate(context.Background(), "", &dto.InitiateRequest{
		Amount:    decimal.NewFromInt(50),
		OrderType: model.OrderTypeDonation,
	})

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestInitiateUnknownOrderType(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Initiate(context.Background(), "", &dto.InitiateRequest{
		Amount:    decimal.NewFromInt(50),
		OrderType: "refund",
	})

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestInitiateSubscriptionRequiresAuth(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Initiate(context.Background(), "", &dto.InitiateRequest{
		OrderType: model.OrderTypeSubscription,
	})

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestInitiateSubscriptionUsesFixedFee(t *testing.T) {
	f := newFixture(t)
	supporter := f.seedSupporter(t)
	ctx := context.Background()

	resp, err := f.checkout.Initiate(ctx, supporter.ID, &dto.InitiateRequest{
		OrderType: model.OrderTypeSubscription,
		// Caller-supplied amounts are ignored for subscriptions.
		Amount: decimal.NewFromInt(7),
	})
	require.NoError(t, err)

	payment, err := f.paymentRepo.FindByTransactionID(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100)))

	sub, err := f.subscriptionRepo.FindByOrderID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPending, sub.Status)
	assert.Equal(t, supporter.ID, sub.UserID)
	assert.Nil(t, sub.StartsAt)
}

func TestInitiateGatewayFailureLeavesPendingRows(t *testing.T) {
	f := newFixture(t)
	creator := f.seedCreator(t)
	ctx := context.Background()

	f.gateway.checkoutResult = &model.CheckoutResult{
		Status:  false,
		Message: "merchant disabled",
	}

	_, err := f.checkout.Initiate(ctx, "", &dto.InitiateRequest{
		Amount:    decimal.NewFromInt(50),
		OrderType: model.OrderTypeDonation,
		CreatorID: creator.ID,
	})

	var gatewayErr *apperr.GatewayError
	require.ErrorAs(t, err, &gatewayErr)

	// The pending rows are orphaned, not rolled back; the sweeper
	// expires them later.
	var orders, payments int64
	require.NoError(t, f.db.Model(&model.Order{}).
		Where("payment_status = ?", model.OrderPending).Count(&orders).Error)
	require.NoError(t, f.db.Model(&model.Payment{}).
		Where("status = ?", model.PaymentPending).Count(&payments).Error)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), payments)
}

func TestInitiateOrderNumbersAreMonotonic(t *testing.T) {
	f := newFixture(t)
	creator := f.seedCreator(t)
	ctx := context.Background()

	for i, want := range []string{"ORD-000001", "ORD-000002", "ORD-000003"} {
		resp, err := f.checkout.Initiate(ctx, "", &dto.InitiateRequest{
			Amount:    decimal.NewFromInt(50),
			OrderType: model.OrderTypeDonation,
			CreatorID: creator.ID,
		})
		require.NoError(t, err, "initiate %d", i)

		order, err := f.orderRepo.FindByID(ctx, f.db, resp.OrderID)
		require.NoError(t, err)
		assert.Equal(t, want, order.OrderNumber)
	}
}
