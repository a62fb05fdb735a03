package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/procure-hub/procure-hub/internal/api/http"
	appNegotiation "github.com/procure-hub/procure-hub/internal/application/negotiation"
	appPurchaseOrder "github.com/procure-hub/procure-hub/internal/application/purchaseorder"
	"github.com/procure-hub/procure-hub/internal/config"
	"github.com/procure-hub/procure-hub/internal/infrastructure/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	bidRepo := postgres.NewBidRepository(pool)
	negotiationRepo := postgres.NewNegotiationRepository(pool)
	purchaseOrderRepo := postgres.NewPurchaseOrderRepository(pool)

	// services
	policy, err := appNegotiation.NewOfferPolicy(cfg.OfferPolicy)
	if err != nil {
		log.Fatalf("offer policy error: %v", err)
	}
	negotiationSvc := appNegotiation.NewService(negotiationRepo, bidRepo, policy, logger)
	purchaseOrderSvc := appPurchaseOrder.NewService(purchaseOrderRepo, negotiationRepo, bidRepo, logger)

	// API server
	apiServer := httpapi.NewServer(negotiationSvc, purchaseOrderSvc)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
