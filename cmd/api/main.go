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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	"github.com/ayushmohite/auctionhouse/internal/config"
	"github.com/ayushmohite/auctionhouse/internal/dashboard"
	"github.com/ayushmohite/auctionhouse/internal/infra/cache"
	"github.com/ayushmohite/auctionhouse/internal/infra/database"
	"github.com/ayushmohite/auctionhouse/internal/infra/storage"
	"github.com/ayushmohite/auctionhouse/internal/scheduler"
	transport "github.com/ayushmohite/auctionhouse/internal/transport/http"
	"github.com/ayushmohite/auctionhouse/internal/users"
	"github.com/ayushmohite/auctionhouse/pkg/auth"
	pkgdb "github.com/ayushmohite/auctionhouse/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Unable to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("Postgres Connected")

	// Redis is optional; without it the active-listing cache is skipped
	var listingCache auction.ListingCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Unable to ping redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		listingCache = cache.NewRedisListingCache(redisClient, cfg.ListingCacheTTL)
		logger.Info("Redis Connected")
	}

	signer, err := auth.NewSigner([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		logger.Error("Failed to create token signer", "error", err)
		os.Exit(1)
	}

	imageStore, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.UploadURLPath)
	if err != nil {
		logger.Error("Failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)
	userRepo := database.NewPostgresUserRepository(pool)
	dashboardRepo := database.NewPostgresDashboardRepository(pool)

	auctionService := auction.NewService(txManager, auctionRepo, bidRepo, outboxRepo, listingCache, cfg.RequireApproval)
	userService := users.NewService(userRepo, signer)
	dashboardService := dashboard.NewService(dashboardRepo)

	router := transport.NewRouter(transport.RouterConfig{
		Auctions:      transport.NewAuctionHandler(auctionService, imageStore),
		Auth:          transport.NewAuthHandler(userService),
		Dashboard:     transport.NewDashboardHandler(dashboardService),
		Signer:        signer,
		Logger:        logger,
		UploadDir:     imageStore.Dir(),
		UploadURLPath: cfg.UploadURLPath,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sweeper := scheduler.NewSweeper(auctionService, cfg.SweepInterval, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
