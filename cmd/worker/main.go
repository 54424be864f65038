package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ayushmohite/auctionhouse/internal/config"
	"github.com/ayushmohite/auctionhouse/internal/infra/database"
	infraevents "github.com/ayushmohite/auctionhouse/internal/infra/events"
	pkgdb "github.com/ayushmohite/auctionhouse/pkg/database"
	"github.com/ayushmohite/auctionhouse/pkg/events"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is not set")
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

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	publisher, err := infraevents.NewRabbitMQPublisher(conn)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	logger.Info("RabbitMQ Connected")

	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	relay := events.NewOutboxRelay(
		outboxRepo,
		publisher,
		txManager,
		10,
		500*time.Millisecond,
		infraevents.Exchange,
		logger,
	)

	logger.Info("Starting Outbox Relay Worker...")
	if err := relay.Run(ctx); err != nil {
		logger.Error("Relay failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}
