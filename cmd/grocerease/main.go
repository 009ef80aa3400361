package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/cart"
	"github.com/grocerease/grocerease-backend/internal/config"
	"github.com/grocerease/grocerease-backend/internal/events"
	"github.com/grocerease/grocerease-backend/internal/handlers"
	"github.com/grocerease/grocerease-backend/internal/ledger"
	"github.com/grocerease/grocerease-backend/internal/metrics"
	"github.com/grocerease/grocerease-backend/internal/seed"
	"github.com/grocerease/grocerease-backend/internal/server"
	"github.com/grocerease/grocerease-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting grocerease-backend", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := ledger.NewPostgresLedger(db, logger)

	cartSlot := cart.NewRedisSlot(cfg.Redis)
	defer cartSlot.Close()
	carts := cart.NewStore(cartSlot, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
	}
	defer publisher.Close()

	checkoutMetrics := metrics.NewCheckout(prometheus.DefaultRegisterer)
	checkout := service.NewOrderCommitService(store, publisher, checkoutMetrics, logger)
	seeder := seed.New(store, cfg.Seed, logger)

	h := handlers.New(store, carts, checkout, seeder, cfg, logger)
	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("order_events", cfg.Features.EnableOrderEvents),
			zap.Bool("seed_endpoint", cfg.Features.EnableSeedEndpoint),
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if cfg.Features.AutoMigrate {
		if err := runMigrations(db, cfg.Database.MigrationsDir); err != nil {
			return nil, err
		}
		logger.Info("Migrations applied", zap.String("dir", cfg.Database.MigrationsDir))
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)
	return db, nil
}

func runMigrations(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
