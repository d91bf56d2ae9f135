package api

import (
	"strings"

	_ "agent-falcon/docs"
	"agent-falcon/internal/api/handlers"
	"agent-falcon/internal/apperror"
	"agent-falcon/pkg/auth"
	"agent-falcon/pkg/config"
	"agent-falcon/pkg/metrics"
	"agent-falcon/pkg/middleware"
	"agent-falcon/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators SetupRouter wires into the pipeline.
// Metrics may be nil, which disables /metrics.
type RouterDeps struct {
	Config         *config.Config
	AnalyzeHandler *handlers.AnalyzeHandler
	Authenticator  *auth.KeyAuthenticator
	Limiter        *ratelimit.Limiter
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

func SetupRouter(deps RouterDeps) *fiber.App {
	cfg := deps.Config
	appLogger := deps.Logger

	app := fiber.New(newFiberConfig(cfg, appLogger))

	// Middleware order is significant: failures from any later stage are
	// rendered by the access log through ErrorHandler.
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: middleware.RequestIDKey,
	}))
	app.Use(middleware.AccessLog(appLogger, deps.Metrics))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins(cfg.CORS.AllowOrigins),
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.APIKeyHeader,
		ExposeHeaders: "RateLimit-Limit,RateLimit-Remaining,RateLimit-Reset,Retry-After,X-Request-ID",
	}))
	app.Use(middleware.RateLimit(
		deps.Limiter,
		middleware.ClientIP(cfg.Server.TrustProxy),
		deps.Metrics,
		appLogger,
	))

	webStaticPath := handlers.FindWebStaticPath(appLogger)
	if webStaticPath != "" {
		appLogger.Info("Serving static files", zap.String("path", webStaticPath))
		app.Static("/static", webStaticPath)
	} else {
		appLogger.Warn("Web static directory not found, serving built-in landing page")
	}

	indexHandler := handlers.NewIndexHandler(webStaticPath, appLogger)
	app.Get("/", indexHandler.Index)
	app.Get("/healthz", handlers.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	app.Post("/analyze",
		middleware.APIKey(deps.Authenticator, deps.Metrics, appLogger),
		deps.AnalyzeHandler.Analyze,
	)

	app.Use(func(c *fiber.Ctx) error {
		return apperror.NotFound("")
	})

	return app
}

func newFiberConfig(cfg *config.Config, appLogger *zap.Logger) fiber.Config {
	fc := fiber.Config{
		AppName:               "agent-falcon",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		EnableIPValidation:    true,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(appLogger, cfg.IsDevelopment()),
	}

	switch cfg.Server.TrustProxy.Mode {
	case config.TrustProxyAll, config.TrustProxyHops:
		fc.ProxyHeader = fiber.HeaderXForwardedFor
	case config.TrustProxyList:
		fc.ProxyHeader = fiber.HeaderXForwardedFor
		fc.EnableTrustedProxyCheck = true
		fc.TrustedProxies = cfg.Server.TrustProxy.Proxies
	}

	return fc
}

func corsOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
