package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/barbershop-concierge/internal/api/router"
	"github.com/wolfman30/barbershop-concierge/internal/app/bootstrap"
	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	"github.com/wolfman30/barbershop-concierge/internal/business"
	appconfig "github.com/wolfman30/barbershop-concierge/internal/config"
	"github.com/wolfman30/barbershop-concierge/internal/conversation"
	httpmiddleware "github.com/wolfman30/barbershop-concierge/internal/http/middleware"
	"github.com/wolfman30/barbershop-concierge/internal/observability/metrics"
	"github.com/wolfman30/barbershop-concierge/internal/web"
	"github.com/wolfman30/barbershop-concierge/internal/webchat"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barbershop concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_url", cfg.LLMBaseURL,
		"appointment_store", cfg.AppointmentStore,
	)

	ctx := context.Background()
	clients := bootstrap.BuildAppointmentClients(ctx, cfg, logger)
	defer clients.Close()

	repo := bootstrap.BuildAppointmentRepository(cfg, clients, logger)
	repo, closePublisher := bootstrap.WithEventPublishing(repo, cfg, logger)
	defer func() { _ = closePublisher() }()

	metricsHandler, chatMetrics := setupChatMetrics()

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Stop()
	}

	handler := buildHandler(cfg, logger, repo, chatMetrics, metricsHandler, limiter)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupChatMetrics registers the chat collectors plus runtime collectors on
// a dedicated registry and returns its /metrics handler.
func setupChatMetrics() (http.Handler, *metrics.ChatMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewChatMetrics(reg)
}

func buildHandler(
	cfg *appconfig.Config,
	logger *logging.Logger,
	repo appointments.Repository,
	chatMetrics *metrics.ChatMetrics,
	metricsHandler http.Handler,
	limiter *httpmiddleware.RateLimiter,
) http.Handler {
	profile := business.Default()
	llm := conversation.NewOpenAIClient(conversation.OpenAIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	chatService := conversation.NewChatService(
		conversation.NewComposer(profile, repo, chatMetrics, logger),
		conversation.NewFallbackClient(llm, profile, cfg.LLMTimeout, chatMetrics, logger),
		chatMetrics,
	)

	return router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        conversation.NewHandler(chatService, repo, cfg.LLMBaseURL, logger),
		WebChatHandler:     webchat.NewHandler(chatService, logger),
		IndexHandler:       web.NewIndexHandler(profile, logger),
		MetricsHandler:     metricsHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
}
