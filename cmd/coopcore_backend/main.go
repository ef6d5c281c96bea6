package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/core/events"
	"github.com/sahakari/coopcore/internal/core/services"
	"github.com/sahakari/coopcore/internal/handlers"
	"github.com/sahakari/coopcore/internal/middleware"
	"github.com/sahakari/coopcore/internal/platform/config"
	"github.com/sahakari/coopcore/internal/platform/rabbitmq"
	"github.com/sahakari/coopcore/internal/repositories/database/pgsql"
	"github.com/sahakari/coopcore/pkg/database"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// @title CoopCore Ledger API
// @version 1.0
// @description Accounting ledger, business-day lifecycle and teller settlement backend for cooperative financial institutions.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Domain events go to the broker when one is configured, otherwise to the
	// log.
	var publisher events.Publisher = &events.LogPublisher{Logger: logger}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.LedgerExchange)
		if err != nil {
			logger.Error("Failed to connect to message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("Event publisher connected", slog.String("exchange", cfg.LedgerExchange))
	}

	repos := pgsql.NewRepositoryProvider(dbPool, publisher)
	serviceContainer := services.NewContainer(&repos, services.ContainerOptions{
		EntryNumberPrefix: cfg.EntryNumberPrefix,
		Thresholds: services.VarianceThresholds{
			Abs: cfg.SettlementVarianceAbsThreshold,
			Pct: cfg.SettlementVariancePctThreshold,
		},
		Clock: portssvc.RealClock{},
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if cfg.RateLimitPerMinute > 0 {
		rate := limiter.Rate{Period: time.Minute, Limit: int64(cfg.RateLimitPerMinute)}
		limiterInstance := limiter.New(memorystore.NewStore(), rate)
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory over a temporary database/sql connection.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
