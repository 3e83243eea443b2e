package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/config"
	"github.com/planmoni/assistant-bfa-go/internal/handler"
	"github.com/planmoni/assistant-bfa-go/internal/infra/cache"
	"github.com/planmoni/assistant-bfa-go/internal/infra/observability"
	"github.com/planmoni/assistant-bfa-go/internal/infra/openai"
	"github.com/planmoni/assistant-bfa-go/internal/infra/resilience"
	"github.com/planmoni/assistant-bfa-go/internal/infra/supabase"
	"github.com/planmoni/assistant-bfa-go/internal/port"
	"github.com/planmoni/assistant-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("openai_model", cfg.OpenAIModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("assistant_timeout", cfg.AssistantTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "planmoni-assistant-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	profileCache := cache.New[string](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("supabase")
	modelCB := resilience.NewCircuitBreaker("openai")
	modelBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	if cfg.SupabaseURL == "" {
		logger.Warn("SUPABASE_URL not set, context fetches will degrade to defaults")
	}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		storeCB,
		resilienceCfg,
		logger,
	)

	// Model calls get a longer HTTP timeout than the data-store reads.
	modelHTTPClient := &http.Client{Timeout: cfg.AssistantTimeout}
	openaiClient := openai.NewClient(
		modelHTTPClient,
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.OpenAIModel,
		modelCB,
		modelBulkhead,
		logger,
	)

	// --- Services ---
	assistantSvc := service.NewAssistant(
		supabaseClient,
		supabaseClient,
		supabaseClient,
		openaiClient,
		profileCache,
		metrics,
		logger,
	)

	var verifier port.TokenVerifier
	if cfg.SupabaseJWTSecret != "" {
		verifier = service.NewSupabaseTokenVerifier(cfg.SupabaseJWTSecret)
		logger.Info("bearer token verification enabled")
	} else {
		logger.Warn("SUPABASE_JWT_SECRET not set, bearer tokens are not verified")
	}

	// --- Router ---
	router := handler.NewRouter(assistantSvc, verifier, metrics, cfg.AssistantTimeout, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AssistantTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
