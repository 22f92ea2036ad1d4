package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kislikjeka/walletledger/internal/infra/kafka"
	"github.com/kislikjeka/walletledger/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/walletledger/internal/infra/redis"
	"github.com/kislikjeka/walletledger/internal/platform/membership"
	"github.com/kislikjeka/walletledger/internal/platform/user"
	"github.com/kislikjeka/walletledger/internal/platform/wallet"
	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/config"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting wallet ledger API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"cache_backend", cfg.CacheBackend,
	)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	checks := map[string]handler.CheckFunc{"database": db.Health}

	// Query cache: in-process by default, Redis when configured
	var cache walletitem.QueryCache
	if cfg.UsesRedis() {
		redisClient, err := infraRedis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		cache = infraRedis.NewItemCache(redisClient, cfg.CacheTTL, log)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		log.Info("Redis query cache enabled", "addr", cfg.RedisURL, "ttl", cfg.CacheTTL)
	} else {
		cache = walletitem.NewItemCache(log)
	}

	// Change events are optional
	var publisher walletitem.EventPublisher = walletitem.NopPublisher{}
	if cfg.EventsEnabled() {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kp.Close()
		publisher = kp
		log.Info("Publishing wallet item events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	walletRepo := postgres.NewWalletRepository(db.Pool)
	membershipRepo := postgres.NewMembershipRepository(db.Pool)
	itemRepo := postgres.NewWalletItemRepository(db.Pool)

	// Services
	userSvc := user.NewService(userRepo, log)
	membershipSvc := membership.NewService(membershipRepo, log)
	walletSvc := wallet.NewService(walletRepo, membershipSvc, log)
	itemSvc := walletitem.NewService(
		itemRepo,
		walletitem.NewAccessGuard(membershipSvc),
		cache,
		publisher,
		cfg.ItemsPerPage,
		log,
	)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	r := httpapi.NewRouter(httpapi.Config{
		Logger:            log,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthHandler:       handler.NewAuthHandler(userSvc, jwtSvc),
		WalletHandler:     handler.NewWalletHandler(walletSvc),
		MembershipHandler: handler.NewMembershipHandler(membershipSvc),
		WalletItemHandler: handler.NewWalletItemHandler(itemSvc, cfg.BalanceCurrency),
		HealthHandler:     handler.NewHealthHandler(checks),
		JWTMiddleware:     middleware.JWTMiddleware(jwtSvc),
		RateLimit:         middleware.RateLimit(ctx),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
