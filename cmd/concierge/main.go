package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kenmarkitan/concierge/internal/brain"
	"github.com/kenmarkitan/concierge/internal/chat"
	"github.com/kenmarkitan/concierge/internal/config"
	"github.com/kenmarkitan/concierge/internal/httpapi"
	"github.com/kenmarkitan/concierge/internal/logging"
	"github.com/kenmarkitan/concierge/internal/observability"
	"github.com/kenmarkitan/concierge/internal/retriever"
	"github.com/kenmarkitan/concierge/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogFilePath)
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer st.Close()

	chain := brain.NewChain(brain.Config{
		LocalEnabled:  cfg.LocalProviderEnabled,
		LocalEndpoint: cfg.LocalProviderURL,
		LocalModel:    cfg.LocalProviderModel,
		HostedAPIKey:  cfg.HostedAPIKey,
		HostedBaseURL: cfg.HostedBaseURL,
		HostedModel:   cfg.HostedModel,
		Timeout:       cfg.ProviderTimeout,
		CompanyName:   cfg.CompanyName,
		WebsiteURL:    cfg.WebsiteURL,
	}, metrics, logger)

	generator := brain.NewGenerator(chain, cfg.CompanyName, cfg.WebsiteURL)
	orchestrator := chat.NewOrchestrator(st, retriever.New(st), generator, metrics, logger)

	api := httpapi.New(cfg, orchestrator, st, metrics, logger)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		logger.Info("server listening", "addr", cfg.BindAddr,
			"local_provider", cfg.LocalProviderEnabled,
			"hosted_provider", cfg.HostedAPIKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = httpServer.Close()
	}

	logger.Info("shutdown complete")
}
