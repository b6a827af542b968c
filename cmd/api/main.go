package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tipjar-backend/internal/client"
	"tipjar-backend/internal/config"
	"tipjar-backend/internal/repository"
	"tipjar-backend/internal/server"
	"tipjar-backend/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	gatewayClient := client.NewGatewayClient(&cfg.Gateway)

	sequenceRepo := repository.NewSequenceRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Environment.Name == "development" {
		if err := userRepo.Seed(ctx); err != nil {
			logger.Warn("seed demo creator", "error", err)
		}
	}

	checkoutService := service.NewCheckoutService(
		db, gatewayClient, cfg.BaseURL, cfg.FrontendURL, cfg.Payment,
		sequenceRepo, orderRepo, paymentRepo, donationRepo, subscriptionRepo, userRepo,
	)
	reconciler := service.NewReconcilerService(
		db, gatewayClient, cfg.Payment, logger,
		paymentRepo, orderRepo, donationRepo, subscriptionRepo, userRepo,
	)
	creatorService := service.NewCreatorService(userRepo, donationRepo)

	sweeper := service.NewSweeper(
		db, cfg.Payment.PendingTTL, cfg.Payment.SweepInterval, logger,
		paymentRepo, orderRepo, donationRepo, subscriptionRepo,
	)
	go sweeper.Run(ctx)

	srv := server.NewServer(checkoutService, reconciler, creatorService, cfg.Auth.JWTSecret, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")
	cancel()

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}

func newLogger(logCfg config.Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logCfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if logCfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h)
}
