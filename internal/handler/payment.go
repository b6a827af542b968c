package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/dto"
	"tipjar-backend/internal/middleware"
	"tipjar-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	checkoutService service.CheckoutService
	reconciler      service.ReconcilerService
	logger          *slog.Logger
}

func NewPaymentHandler(checkoutService service.CheckoutService, reconciler service.ReconcilerService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		reconciler:      reconciler,
		logger:          logger,
	}
}

func (h *PaymentHandler) Initiate(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.InitiateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.Initiate(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Webhook receives asynchronous gateway notifications. The payload is
// never trusted: the reconciler re-verifies against the gateway. A 200
// acknowledges receipt even when the payment failed — the failure lives
// in stored state, not in the response code. Only verify-call transport
// errors and persistence failures answer 5xx so the gateway retries.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.WebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook body")
	}
	if req.TransactionID == "" {
		return apperr.Validation("transaction_id missing from webhook")
	}

	_, err := h.reconciler.ProcessWebhook(ctx, req.TransactionID)
	if err != nil {
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			// Unknown transaction: nothing more can be done, ack so the
			// gateway stops retrying.
			h.logger.Warn("webhook for unknown transaction", "transaction_id", req.TransactionID)
			return c.JSON(http.StatusOK, dto.WebhookResponse{Success: true})
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.WebhookResponse{Success: true})
}

// Verify is the client-facing poller: the browser lands on the return
// page and re-checks the transaction instead of waiting for the webhook.
func (h *PaymentHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.TransactionID == "" {
		return apperr.Validation("transaction_id is required")
	}

	outcome, err := h.reconciler.VerifyTransaction(ctx, req.TransactionID)
	if err != nil {
		var gatewayErr *apperr.GatewayError
		if errors.As(err, &gatewayErr) {
			// Fail-closed for the polling client; the row stays as-is so
			// a later webhook can still resolve it.
			h.logger.Warn("verify call failed", "transaction_id", req.TransactionID, "error", err)
			return c.JSON(http.StatusOK, dto.VerifyResponse{
				Success:       false,
				PaymentStatus: "failed",
				Error:         gatewayErr.Msg,
			})
		}
		return err
	}

	order := outcome.Order
	return c.JSON(http.StatusOK, dto.VerifyResponse{
		Success:          true,
		PaymentStatus:    outcome.PaymentStatus,
		VerificationData: outcome.Verification,
		Order: &dto.OrderSummary{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			OrderType:     order.OrderType,
			TotalAmount:   order.TotalAmount,
			Currency:      order.Currency,
			PaymentStatus: order.PaymentStatus,
			TransactionID: order.TransactionID,
		},
	})
}
