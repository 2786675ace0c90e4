package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/config"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/handlers"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/middleware"
	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Accounts     *usecase.AccountService
	Catalog      *usecase.CatalogService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Metrics     *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.HTTP.CORSAllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup, buildLoginMiddlewares(deps)...)

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registrationHandler.RegisterRoutes(api.Group("/accounts"))

		accountGroup := api.Group("/accounts")
		accountGroup.Use(authMiddleware)
		handlers.NewAccountHandler(deps.Services.Accounts).
			RegisterRoutes(accountGroup, middleware.RequireSelfOrRole("id", domain.RoleAdmin))

		if deps.Services.Catalog != nil {
			catalogHandler := handlers.NewCatalogHandler(deps.Services.Catalog)
			catalogHandler.RegisterPublicRoutes(api.Group("/catalog"))

			adminCatalog := api.Group("/catalog")
			adminCatalog.Use(authMiddleware, adminOnly)
			catalogHandler.RegisterAdminRoutes(adminCatalog)
		}
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.HTTP.LoginRateLimit
	if limit <= 0 {
		return nil
	}

	window := deps.Config.HTTP.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:   "auth_login_ip",
		Limit:  limit,
		Window: window,
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
