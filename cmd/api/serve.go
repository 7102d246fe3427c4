package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/accounts-api/docs" // Swagger docs
	"github.com/redmonkez12/accounts-api/internal/auth"
	"github.com/redmonkez12/accounts-api/internal/config"
	"github.com/redmonkez12/accounts-api/internal/database"
	httpServer "github.com/redmonkez12/accounts-api/internal/http"
	"github.com/redmonkez12/accounts-api/internal/logging"
	"github.com/redmonkez12/accounts-api/internal/metrics"
	"github.com/redmonkez12/accounts-api/internal/password"
	"github.com/redmonkez12/accounts-api/internal/user"
)

const serviceName = "accounts-api"

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLoggerWithLevel(cfg.Server.IsDevelopment(), cfg.Server.LogLevel)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	metrics.MustRegister(serviceName)

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, database.MigrateUp); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Profile cache is optional
	var cache user.Cache = user.NoopCache{}
	if cfg.Redis.CacheEnabled() {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		cache = user.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
		logger.Info("profile cache enabled", "ttl", cfg.Redis.CacheTTL.String())
	}

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher := password.New()

	// Initialize services
	userRepo := user.NewRepository(db, cfg.Database.QueryTimeout)
	userService := user.NewService(userRepo, hasher, cache, logger)
	authService, err := auth.NewService(userService, hasher, tokenService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	// Initialize router
	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService),
		Users:          user.NewHandler(userService),
		AuthMiddleware: auth.NewMiddleware(tokenService),
	}, logger)

	// Initialize HTTP server
	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return awaitShutdown(serverErrors, shutdown, server.Shutdown, cfg.Server.ShutdownTimeout, logger)
}

// awaitShutdown blocks until the server stops on its own or a signal arrives,
// in which case the server gets timeout to drain.
func awaitShutdown(
	serverErrors <-chan error,
	signals <-chan os.Signal,
	shutdown func(context.Context) error,
	timeout time.Duration,
	logger *logging.Logger,
) error {
	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server closed")
		return nil
	case sig := <-signals:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// newTokenService picks the token implementation named by TOKEN_FORMAT.
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatPaseto:
		return auth.NewPasetoService(cfg.TokenSecret, cfg.Issuer, cfg.TokenTTL)
	case config.TokenFormatJWT:
		return auth.NewJWTService(cfg.TokenSecret, cfg.Issuer, cfg.TokenTTL)
	}
	return nil, fmt.Errorf("unknown token format %q", cfg.TokenFormat)
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
