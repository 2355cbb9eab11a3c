package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"

	"github.com/taraskit/quest-bot/internal/bot"
	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/health"
	"github.com/taraskit/quest-bot/internal/lifecycle"
	"github.com/taraskit/quest-bot/internal/middleware"
	"github.com/taraskit/quest-bot/internal/ratelimit"
	"github.com/taraskit/quest-bot/internal/session"
	"github.com/taraskit/quest-bot/internal/stage"
	"github.com/taraskit/quest-bot/internal/watcher"
	"github.com/taraskit/quest-bot/pkg/config"
	"github.com/taraskit/quest-bot/pkg/graceful"
	"github.com/taraskit/quest-bot/pkg/logger"
	"github.com/taraskit/quest-bot/pkg/metrics"
	redisclient "github.com/taraskit/quest-bot/pkg/redis"
)

const limiterCleanupInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quest-bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log.Info("starting quest bot",
		slog.String("env", cfg.AppEnv),
		slog.String("games_dir", cfg.Games.Dir),
		slog.String("http_port", cfg.Server.Port),
	)

	store, err := gamefile.NewStore(cfg.Games.Dir, log)
	if err != nil {
		return fmt.Errorf("open game store: %w", err)
	}

	var storage stage.Storage
	var redisClient health.Pinger
	closeRedis := func() error { return nil }

	if cfg.Redis.Addr != "" {
		client, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect stage backend: %w", err)
		}
		storage = stage.NewRedisStorage(client, log)
		redisClient = client
		closeRedis = client.Close
		log.Info("using redis stage storage", slog.String("addr", cfg.Redis.Addr))
	} else {
		storage = stage.NewMemoryStorage()
		log.Info("using in-memory stage storage")
	}

	stages := stage.NewMachine(storage, log)
	sess := session.New()

	var rateLimitMw *middleware.RateLimitMiddleware
	var limiter *ratelimit.MemoryLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewMemoryLimiter(log)
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.IsAdmin, log)
	}

	b, err := bot.New(*cfg, log, stages, sess, store, rateLimitMw)
	if err != nil {
		return fmt.Errorf("build bot: %w", err)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("games_dir", store)
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}

	srv := graceful.NewServer(log, cfg.Server.Port, checker, cfg.Server.ShutdownTimeout)

	go metrics.NewStageCollector(stages).Run(ctx)

	go func() {
		if err := watcher.New(store.Dir(), log).Run(ctx); err != nil {
			log.Error("games directory watcher stopped", slog.Any("error", err))
		}
	}()

	if limiter != nil {
		cleaner := ratelimit.NewCleaner(limiter, log, limiterCleanupInterval, cfg.RateLimit.Window)
		go cleaner.Run(ctx)
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx)
	}()

	go b.Start()
	log.Info("quest bot is running")

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			log.Error("monitoring server failed", slog.Any("error", err))
		}
	}

	shutdown := lifecycle.NewShutdown(log, cfg.Server.ShutdownTimeout)
	shutdown.Register("telegram_bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("stage_backend", func(context.Context) error {
		return closeRedis()
	})

	return shutdown.Execute(context.Background())
}
