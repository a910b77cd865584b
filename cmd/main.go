package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/sequence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(cfg.Database.DSN, logger); err != nil {
			return err
		}
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	m := metrics.New()

	products := product.NewPostgresRepository(pool)
	orders := order.NewPostgresRepository(pool)

	var opts []order.ServiceOption
	if cfg.Events.PublishEnabled() {
		conn, err := amqp.Dial(cfg.Events.RabbitURL)
		if err != nil {
			return fmt.Errorf("dial rabbitmq: %w", err)
		}
		defer conn.Close()

		publisher, err := events.NewPublisher(conn, sequence.NewCounter(pool), cfg.Events.Producer)
		if err != nil {
			return err
		}
		defer publisher.Close()

		opts = append(opts, order.WithPublisher(publisher))
		logger.Info("order events enabled", zap.String("exchange", events.EventsExchange))
	} else {
		logger.Info("order events disabled")
	}

	svc := order.NewService(order.NewPgTransactor(pool, products, orders), orders, m, logger, opts...)

	router := httpapi.NewRouter(
		httpapi.NewProductHandler(products, logger),
		httpapi.NewOrderHandler(svc, logger),
		logger,
		httpapi.RouterConfig{
			AllowOrigins:   cfg.HTTP.CORSAllowOrigins,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			Metrics:        m.Handler(),
		},
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("catalog-service listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
