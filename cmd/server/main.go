package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/namviet/fieldops/api/handler"
	"github.com/namviet/fieldops/internal/config"
	"github.com/namviet/fieldops/internal/infrastructure/identity"
	"github.com/namviet/fieldops/internal/infrastructure/monitor"
	pgInfra "github.com/namviet/fieldops/internal/infrastructure/postgres"
	redisInfra "github.com/namviet/fieldops/internal/infrastructure/redis"
	"github.com/namviet/fieldops/internal/infrastructure/spool"
	"github.com/namviet/fieldops/internal/middleware"
	"github.com/namviet/fieldops/internal/router"
	"github.com/namviet/fieldops/internal/services"
	"github.com/namviet/fieldops/internal/services/lifecycle"
	"github.com/namviet/fieldops/pkg/geo"
	"github.com/namviet/fieldops/pkg/httpcontext"
	"github.com/namviet/fieldops/pkg/logger"
	"github.com/namviet/fieldops/repository/postgres"
	redisRepo "github.com/namviet/fieldops/repository/redis"
	accountUC "github.com/namviet/fieldops/usecase/account"
	auditUC "github.com/namviet/fieldops/usecase/audit"
	authUC "github.com/namviet/fieldops/usecase/auth"
	checkinUC "github.com/namviet/fieldops/usecase/checkin"
	directoryUC "github.com/namviet/fieldops/usecase/directory"
	tasksUC "github.com/namviet/fieldops/usecase/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	spoolStore, err := spool.Open(cfg.Spool.Path, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit spool", zap.Error(err))
	}
	manager.Register("spool", func(ctx context.Context) error {
		return spoolStore.Close()
	})

	mon := monitor.New(pool, redisClient, spoolStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	identityClient := identity.NewClient(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
		Timeout: cfg.Identity.Timeout,
	}, zapLogger)
	identityProvider := identity.NewCachedProvider(identityClient, redisClient, cfg.Identity.CacheTTL, zapLogger)

	spoolProcessor := services.NewSpoolProcessor(
		spoolStore,
		mon,
		activityRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Spool.SyncInterval,
			BatchSize:  cfg.Spool.BatchSize,
			MaxRetries: cfg.Spool.MaxRetry,
			Retention:  time.Duration(cfg.Spool.RetentionHours) * time.Hour,
		},
	)
	spoolProcessor.Start()
	manager.Register("spool_processor", func(ctx context.Context) error {
		spoolProcessor.Stop(ctx)
		return nil
	})

	auditBridge := services.NewAuditBridge(activityRepo, spoolProcessor, zapLogger)

	authUseCase := authUC.New(identityProvider, sessionRepo, zapLogger)
	taskUseCase := tasksUC.New(taskRepo, tasksUC.Config{
		RequireExpectedRevenue: cfg.Tasks.RequireExpectedRevenue,
	}, zapLogger)
	checkinUseCase := checkinUC.New(taskRepo, locationRepo, identityProvider, geo.Policy{
		AcceptRadiusMeters: cfg.Verification.AcceptRadiusMeters,
		WarnRadiusMeters:   cfg.Verification.WarnRadiusMeters,
	}, zapLogger)
	accountUseCase := accountUC.New(identityProvider, auditBridge, zapLogger)
	auditUseCase := auditUC.New(activityRepo, zapLogger)
	directoryUseCase := directoryUC.New(locationRepo, customerRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Check:     apiHandler.NewCheckHandler(checkinUseCase, ctxAdapter, zapLogger),
		Account:   apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Activity:  apiHandler.NewActivityHandler(auditUseCase, ctxAdapter, zapLogger),
		Directory: apiHandler.NewDirectoryHandler(directoryUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
