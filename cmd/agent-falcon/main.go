package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-falcon/internal/agent"
	"agent-falcon/internal/api"
	"agent-falcon/internal/api/handlers"
	"agent-falcon/internal/service"
	"agent-falcon/pkg/auth"
	"agent-falcon/pkg/config"
	"agent-falcon/pkg/logger"
	"agent-falcon/pkg/metrics"
	"agent-falcon/pkg/ratelimit"
	"agent-falcon/pkg/redis"

	"go.uber.org/zap"
)

// @title Agent Falcon API
// @version 1.0
// @description Gateway in front of the financial analysis agent

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKey
// @in header
// @name x-api-key
// @description Key configured through ANALYZE_API_KEY.

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.IsDevelopment()); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Agent Falcon",
		zap.String("env", cfg.Env),
		zap.String("agent_provider", cfg.Agent.Provider),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	authenticator := auth.NewKeyAuthenticator(cfg.Auth.APIKey)
	logStartupWarnings(cfg, authenticator, appLogger)

	// Rate limit store
	var store ratelimit.Store
	if cfg.RateLimit.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RateLimit.RedisURL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		store = ratelimit.NewRedisStore(client)
	} else {
		memStore := ratelimit.NewMemoryStore()
		go memStore.RunJanitor(ctx, janitorInterval)
		store = memStore
		appLogger.Info("Using in-memory rate limit store")
	}
	limiter := ratelimit.New(store, cfg.RateLimit.Max, cfg.RateLimit.Window)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Agents
	registry := agent.NewRegistry()
	closeAgent, err := registerAgent(ctx, registry, &cfg.Agent, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize agent", zap.Error(err))
	}
	defer closeAgent()

	analyzeService := service.NewAnalyzeService(registry, &cfg.Agent, m, appLogger)
	analyzeHandler := handlers.NewAnalyzeHandler(service.NewSchemaValidator(), analyzeService, appLogger)

	// Setup router
	app := api.SetupRouter(api.RouterDeps{
		Config:         cfg,
		AnalyzeHandler: analyzeHandler,
		Authenticator:  authenticator,
		Limiter:        limiter,
		Metrics:        m,
		Logger:         appLogger,
	})

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// logStartupWarnings flags configurations that are unsafe to expose publicly.
func logStartupWarnings(cfg *config.Config, authenticator *auth.KeyAuthenticator, appLogger *zap.Logger) {
	if !authenticator.Enforced() {
		appLogger.Warn("ANALYZE_API_KEY is not set, /analyze accepts unauthenticated requests")
	}
	if cfg.IsDevelopment() {
		appLogger.Warn("APP_ENV is development, error responses include stack traces and causes",
			zap.String("env", cfg.Env))
	}
}

// registerAgent builds the backend selected by cfg.Provider. Missing
// credentials leave the registry empty so /analyze answers 404.
func registerAgent(ctx context.Context, registry *agent.Registry, cfg *config.AgentConfig, appLogger *zap.Logger) (func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case config.ProviderGigaChat:
		if cfg.GigaChat.APIKey == "" {
			appLogger.Warn("GIGACHAT_API_KEY is not set, agent not registered", zap.String("agent", cfg.Name))
			return noop, nil
		}
		a, err := agent.NewGigaChatAgent(ctx, &cfg.GigaChat, appLogger)
		if err != nil {
			return noop, err
		}
		registry.Register(cfg.Name, a)
		return func() { _ = a.Close() }, nil

	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			appLogger.Warn("ANTHROPIC_API_KEY is not set, agent not registered", zap.String("agent", cfg.Name))
			return noop, nil
		}
		registry.Register(cfg.Name, agent.NewAnthropicAgent(&cfg.Anthropic, appLogger))
		return noop, nil

	default:
		return noop, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
}
