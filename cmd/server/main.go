package main

import (
	"cardiostent/internal/app"
	"cardiostent/internal/cache"
	"cardiostent/internal/config"
	"cardiostent/internal/logging"
	"cardiostent/internal/service"
	"cardiostent/internal/storage"
	"cardiostent/internal/transport/rest"
	"cardiostent/internal/transport/ws"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record store
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()
	repo := application.Repo

	// Submission rate limiter: Redis when configured, otherwise per process
	var limiter cache.RateLimiter
	if cfg.Server.SubmitRateLimit > 0 {
		limiter = cache.NewMemoryRateLimiter(cfg.Server.SubmitRateLimit, time.Minute)
		if cfg.Redis.URI != "" {
			rdb, err := connectRedis(ctx, cfg.Redis.URI)
			if err != nil {
				return err
			}
			defer rdb.Close()
			limiter = cache.NewRedisRateLimiter(rdb, "submit", cfg.Server.SubmitRateLimit, time.Minute)
			logger.Info("connected to redis")
		}
	}

	// Export archive
	var archive service.ArtifactStore
	if cfg.Minio.Enabled() {
		store, err := storage.NewArchiveStore(ctx, cfg.Minio)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		archive = store
		logger.Info("export archive enabled", zap.String("bucket", cfg.Minio.Bucket))
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger.Named("ws"))
	defer wsHub.Close()

	// Initialize services
	authSvc, err := service.NewAuthService(cfg.Auth, nil)
	if err != nil {
		return err
	}
	if !authSvc.HasSecrets() {
		logger.Warn("no admin secret configured; admin routes will reject every login")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; admin tokens will not survive a restart")
	}
	submissionSvc := service.NewSubmissionService(repo, nil, logger.Named("submission"))
	exportSvc := application.NewExportService(archive)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	submissionSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:       authSvc,
		SubmissionService: submissionSvc,
		AnalyticsService:  application.Analytics,
		ReportService:     application.Reports,
		ExportService:     exportSvc,
		WSHub:             wsHub,
		SubmitLimiter:     limiter,
		StaticDir:         cfg.Server.StaticDir,
		AllowedOrigins:    cfg.Server.CORSAllowedOrigins,
		Logger:            logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("missing_score_policy", string(cfg.Analytics.MissingScorePolicy)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

func connectRedis(ctx context.Context, uri string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URI: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: uri}
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
