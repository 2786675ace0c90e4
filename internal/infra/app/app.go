package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/config"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/database"
	kafkainfra "github.com/kevin2-cyber/ligera-sub001/internal/infra/kafka"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/logger"
	redisinfra "github.com/kevin2-cyber/ligera-sub001/internal/infra/redis"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/storage"
	"github.com/kevin2-cyber/ligera-sub001/internal/jobs"
	postgresrepo "github.com/kevin2-cyber/ligera-sub001/internal/repository/postgres"
	redisrepo "github.com/kevin2-cyber/ligera-sub001/internal/repository/redis"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/middleware"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/routes"
	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

// Application wires the marketplace services together and runs the HTTP
// server plus background jobs.
type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	producer  *kafkainfra.Producer
	scheduler *cron.Cron
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	accountRepo := postgresrepo.NewAccountRepository(pool)
	attemptRepo := postgresrepo.NewLoginAttemptRepository(pool)
	categoryRepo := postgresrepo.NewCategoryRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)

	profileCache := redisrepo.NewProfileCache(redisClient.Client(), cfg.Redis.ProfilePrefix, cfg.Redis.ProfileTTL)

	rateLimitStore := redisrepo.NewRateLimitStore(redisClient.Client(), "ligera:ratelimit", cfg.HTTP.LoginRateWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var objectStore port.ObjectStore
	if cfg.Storage.AccessKey != "" {
		minioStore, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			log.Warn("failed to init object store, product images disabled", zap.Error(err))
		} else {
			if err := minioStore.EnsureBucket(ctx); err != nil {
				log.Warn("failed to ensure image bucket", zap.Error(err))
			}
			objectStore = minioStore
		}
	}

	authService := usecase.NewAuthService(accountRepo, attemptRepo, tokenManager, log)
	registrationService := usecase.NewRegistrationService(accountRepo, eventPublisher, security.DefaultPasswordValidator()).WithLogger(log)
	accountService := usecase.NewAccountService(accountRepo, accountRepo, authService, eventPublisher, log).
		WithProfileCache(profileCache)
	catalogService := usecase.NewCatalogService(categoryRepo, productRepo, objectStore, cfg.Storage.PresignExpiry, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		log.Warn("failed to init http metrics", zap.Error(err))
	}

	scheduler := cron.New()
	pruner := jobs.NewLoginAttemptPruner(attemptRepo, cfg.Retention.LoginAttempts, log)
	if _, err := scheduler.AddJob(cfg.Retention.PruneSchedule, pruner); err != nil {
		log.Warn("failed to schedule login attempt pruning", zap.Error(err))
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     httpMetrics,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Accounts:     accountService,
			Catalog:      catalogService,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		producer:  producer,
		scheduler: scheduler,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	if a.scheduler != nil {
		a.scheduler.Start()
		defer a.scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting marketplace API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
