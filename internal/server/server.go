package server

import (
	"errors"
	"log/slog"
	"net/http"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/handler"
	custommiddleware "tipjar-backend/internal/middleware"
	"tipjar-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	creatorHandler *handler.CreatorHandler
}

func NewServer(
	checkoutService service.CheckoutService,
	reconciler service.ReconcilerService,
	creatorService service.CreatorService,
	jwtSecret string,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newHTTPErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(custommiddleware.Auth(jwtSecret))

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(checkoutService, reconciler, logger),
		creatorHandler: handler.NewCreatorHandler(creatorService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/initiate", s.paymentHandler.Initiate)
	payments.POST("/verify", s.paymentHandler.Verify)

	// -------- gateway webhooks --------
	payments.POST("/webhook", s.paymentHandler.Webhook)

	// -------- creators --------
	creators := api.Group("/creators")
	creators.GET("/:id/progress", s.creatorHandler.Progress)
	creators.GET("/:id/donations", s.creatorHandler.Donations)
}

// Echo exposes the underlying engine for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// newHTTPErrorHandler maps the error taxonomy onto HTTP responses.
// Verification failures never reach here as errors — they are recorded
// as failed business state; only input and infrastructure failures do.
func newHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		var (
			validationErr  *apperr.ValidationError
			notFoundErr    *apperr.NotFoundError
			gatewayErr     *apperr.GatewayError
			persistenceErr *apperr.PersistenceError
			httpErr        *echo.HTTPError
		)
		switch {
		case errors.As(err, &validationErr):
			status = http.StatusBadRequest
			msg = validationErr.Msg
		case errors.As(err, &notFoundErr):
			status = http.StatusNotFound
			msg = notFoundErr.Msg
		case errors.As(err, &gatewayErr):
			status = http.StatusBadGateway
			msg = gatewayErr.Msg
		case errors.As(err, &persistenceErr):
			status = http.StatusInternalServerError
			msg = persistenceErr.Msg
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
		}

		if status >= 500 {
			logger.Error("request failed", "status", status, "error", err)
		}

		_ = c.JSON(status, map[string]interface{}{
			"success": false,
			"error":   msg,
		})
	}
}
