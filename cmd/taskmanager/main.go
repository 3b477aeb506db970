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

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/K-nass/task-management/internal/app"
	"github.com/K-nass/task-management/internal/auth"
	"github.com/K-nass/task-management/internal/observability"
	"github.com/K-nass/task-management/internal/platform/cache"
	"github.com/K-nass/task-management/internal/platform/db"
	"github.com/K-nass/task-management/internal/tasks"
	"github.com/K-nass/task-management/internal/users"
)

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
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("taskmanager stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		MaxConnIdle:    cfg.DBMaxConnIdle,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer dbpool.Close()
	logger.Info("connected to postgres", slog.Int("max_conns", int(cfg.DBMaxConns)))

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool, logger); err != nil {
			return err
		}
	}

	readiness := []app.ReadinessCheck{{Name: "postgres", Check: dbpool.Ping}}

	var redisClient *redis.Client
	if cfg.LimiterEnabled() {
		redisClient, err = cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn("redis unavailable, login limiter disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			readiness = append(readiness, app.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}})
		}
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	userService := users.NewService(users.NewRepository(dbpool))
	limiter := auth.NewLoginLimiter(redisClient, int(cfg.LoginMaxAttempts), cfg.LoginAttemptWindow)
	authService := auth.NewService(userService, tokens, limiter, logger).WithObserver(metrics)
	guard := auth.NewGuard(tokens, logger)
	authHandler := auth.NewHandler(logger, authService, guard, auth.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.SessionTTL,
	})

	taskService := tasks.NewService(tasks.NewRepository(dbpool), logger)
	tasksHandler := tasks.NewHandler(logger, taskService)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		TasksHandler: tasksHandler,
		Guard:        guard,
		Metrics:      metrics,
		Readiness:    readiness,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api_prefix", cfg.AppAPIPrefix))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
