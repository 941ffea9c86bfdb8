// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/carterperez-dev/templates/classifieds/internal/ad"
	"github.com/carterperez-dev/templates/classifieds/internal/admin"
	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/auth"
	"github.com/carterperez-dev/templates/classifieds/internal/comment"
	"github.com/carterperez-dev/templates/classifieds/internal/config"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/health"
	"github.com/carterperez-dev/templates/classifieds/internal/middleware"
	"github.com/carterperez-dev/templates/classifieds/internal/server"
	"github.com/carterperez-dev/templates/classifieds/internal/user"
	"github.com/carterperez-dev/templates/classifieds/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser := setupLogger(cfg.Log)
	defer logCloser.Close() //nolint:errcheck // flushed on exit
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry exporter initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		version, migErr := core.Migrate(cfg.Database.URL, migrations.FS)
		if migErr != nil {
			return migErr
		}
		logger.Info("schema migrated", "version", version)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	store, storeCloser, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("asset store ready", "driver", cfg.Storage.Driver)

	if cfg.IsDevelopment() {
		if err := ensureSigningKey(cfg.JWT.PrivateKeyPath, logger); err != nil {
			return err
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"access_token_ttl", jwtManager.AccessTokenTTL(),
	)

	hasher := core.Argon2Hasher{}
	maxUpload := cfg.Storage.MaxUploadBytes

	userSvc := user.NewService(
		user.NewRepository(db.DB),
		hasher,
		store,
		maxUpload,
		logger,
	)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		jwtManager,
		userSvc,
		hasher,
		auth.NewRedisBlacklist(redis.Client),
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	// Comments check that their ad exists and ad deletion purges comments,
	// so the comment service reaches the ad service through a late binding.
	var adSvc *ad.Service
	commentSvc := comment.NewService(
		comment.NewRepository(db.DB),
		adExistsFunc(func(ctx context.Context, adID int64) (bool, error) {
			return adSvc.Exists(ctx, adID)
		}),
		logger,
	)
	commentHandler := comment.NewHandler(commentSvc)

	adSvc = ad.NewService(
		ad.NewRepository(db.DB),
		commentSvc,
		store,
		maxUpload,
		logger,
	)
	adHandler := ad.NewHandler(adSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "storage", Checker: store},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Users:      userSvc,
		Ads:        adSvc,
		Comments:   commentSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	router.Handle("/metrics", promhttp.Handler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		adHandler.RegisterRoutes(r, authenticator, func(r chi.Router) {
			commentHandler.RegisterRoutes(r, authenticator)
		})
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := storeCloser.Close(); err != nil {
		logger.Error("asset store close error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

type adExistsFunc func(ctx context.Context, adID int64) (bool, error)

func (f adExistsFunc) Exists(ctx context.Context, adID int64) (bool, error) {
	return f(ctx, adID)
}

func openStore(
	ctx context.Context,
	cfg config.StorageConfig,
) (asset.Store, io.Closer, error) {
	var (
		store  asset.Store
		closer io.Closer = nopCloser{}
	)

	switch cfg.Driver {
	case config.StorageS3:
		s3Store, err := asset.NewS3Store(asset.S3Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		store = s3Store
	case config.StorageGCS:
		gcsStore, err := asset.NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		store, closer = gcsStore, gcsStore
	default:
		local, err := asset.NewLocalStore(cfg.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		store = local
	}

	return asset.Instrument(store, cfg.Driver), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ensureSigningKey creates a throwaway ES256 key for local runs.
func ensureSigningKey(path string, logger *slog.Logger) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat signing key: %w", err)
	}

	if err := auth.GenerateKeyPair(path); err != nil {
		return err
	}

	logger.Warn("generated development signing key", "path", path)
	return nil
}

func setupLogger(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer
}
