package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/database"
	"github.com/yourfuture/platform/internal/health"
	"github.com/yourfuture/platform/internal/moderation"
	"github.com/yourfuture/platform/internal/notification"
	"github.com/yourfuture/platform/internal/profilecache"
	"github.com/yourfuture/platform/internal/ratelimit"
	"github.com/yourfuture/platform/internal/repository"
	"github.com/yourfuture/platform/internal/server"
	"github.com/yourfuture/platform/internal/startup"
	"github.com/yourfuture/platform/internal/user"
	"github.com/yourfuture/platform/internal/vacancy"
	"github.com/yourfuture/platform/pkg/config"
	"github.com/yourfuture/platform/pkg/graceful"
	"github.com/yourfuture/platform/pkg/logger"
	"github.com/yourfuture/platform/pkg/metrics"
	pkgredis "github.com/yourfuture/platform/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			slog.Warn("sentry init failed, continuing without it", slog.Any("error", err))
			cfg.Sentry.Enabled = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)
	log.Info("starting venture platform API",
		slog.String("env", cfg.AppEnv),
		slog.String("port", cfg.Server.Port),
	)

	// Log level follows config file edits without a restart.
	config.Watch(v, func(lc config.LoggerConfig) {
		logger.SetLevel(lc.Level)
		log.Info("log level reloaded", slog.String("level", lc.Level))
	})

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.NewMigrator(db, log).ApplyDir(ctx, migrationsDir); err != nil {
		return err
	}
	log.Info("database migrations applied")

	redisClient, err := pkgredis.New(ctx, cfg.Redis)
	if err != nil {
		// Redis only backs the cache and the rate limiter; the API can
		// run degraded without it.
		log.Warn("redis unavailable, running without cache and redis rate limiting", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("closing redis", slog.Any("error", cerr))
			}
		}()
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var cache *profilecache.Cache
	if redisClient != nil {
		cache = profilecache.New(pkgredis.NewMetricsClient(redisClient), profilecache.DefaultTTL)
	}

	userRepo := repository.NewUserRepository(db, log)
	startupRepo := repository.NewStartupRepository(db, log)
	vacancyRepo := repository.NewVacancyRepository(db, log)
	notificationRepo := repository.NewNotificationRepository(db, log)

	userService := user.NewService(userRepo, tokens, cache, log)
	startupService := startup.NewService(startupRepo, log)
	vacancyService := vacancy.NewService(vacancyRepo, startupRepo, log)
	notificationService := notification.NewService(notificationRepo, userRepo, log)

	if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return err
	}

	moderation.RegisterTransitionRecorder(metrics.RecordTransition)

	statusCollector := metrics.NewStatusCollector(func(ctx context.Context) (map[string]map[string]int, error) {
		startups, err := startupService.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		vacancies, err := vacancyService.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]map[string]int{
			"startup": startups,
			"vacancy": vacancies,
		}, nil
	}, 30*time.Second)
	go statusCollector.Run(ctx)

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	}

	var limiter ratelimit.Limiter
	memory := ratelimit.NewMemoryLimiter()
	if redisClient != nil {
		limiter = ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(redisClient.Client, log), memory, log,
		)
		cleaner := ratelimit.NewCleaner(redisClient.Client, log, 10*time.Minute, 5*time.Minute)
		go cleaner.Run(ctx)
	} else {
		limiter = memory
	}

	srv := server.New(server.Deps{
		Users:         userService,
		Startups:      startupService,
		Vacancies:     vacancyService,
		Notifications: notificationService,
		Tokens:        tokens,
		Errors:        apperr.NewHandler(log, cfg.Sentry.Enabled),
		Health:        checker,
		Limiter:       limiter,
		Rules:         ratelimit.NewRules(cfg.RateLimit),
		Log:           log,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(cfg.CORS),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout).ListenAndServe(ctx)
}
