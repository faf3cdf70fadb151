package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/guriri-express/dispatch/internal/app"
	"github.com/guriri-express/dispatch/internal/auth"
	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/observability"
	"github.com/guriri-express/dispatch/internal/platform/cache"
	"github.com/guriri-express/dispatch/internal/platform/db"
	"github.com/guriri-express/dispatch/internal/pricing"
	"github.com/guriri-express/dispatch/internal/reports"
	reporthttp "github.com/guriri-express/dispatch/internal/reports/http"
	"github.com/guriri-express/dispatch/jobs"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := commission.VerifyRules(); err != nil {
		logger.Error("commission rules", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, ReadOnly: true})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	readiness := []app.Pinger{}
	// Without Redis the merchant directory is read straight from Postgres.
	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, merchant cache disabled", slog.Any("error", err))
	} else {
		readiness = append(readiness, redisPinger{client: redisClient})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	pgRepo := reports.NewPGRepository(dbpool)
	readiness = append(readiness, pgRepo)
	merchantCache := reports.NewCache(redisClient, cfg.MerchantCacheTTL)
	if err := merchantCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("merchant cache invalidation", slog.Any("error", err))
	}
	repo := reports.NewCachedRepository(pgRepo, merchantCache)

	metrics := observability.NewMetrics()
	reportService := reports.NewService(repo, logger).WithObserver(metrics)
	reportHandler := reporthttp.NewHandler(logger, reportService)
	pricingHandler := pricing.NewHandler(logger, pricing.NewService(repo))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Identity:       auth.HeaderResolver{},
		ReportHandler:  reportHandler,
		PricingHandler: pricingHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
		Readiness:      readiness,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
