package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/routing_console/internal/adapters/backend/rest"
	"github.com/SscSPs/routing_console/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	"github.com/SscSPs/routing_console/internal/core/services"
	"github.com/SscSPs/routing_console/internal/handlers"
	"github.com/SscSPs/routing_console/internal/middleware"
	"github.com/SscSPs/routing_console/internal/platform/config"
	"github.com/SscSPs/routing_console/internal/platform/credentials"
	"github.com/SscSPs/routing_console/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the gateway and serves until the listener fails. Deferred cleanup
// runs before main exits.
func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repos := portsrepo.RepositoryProvider{}
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return fmt.Errorf("failed to initialize database pool: %w", err)
		}
		defer database.ClosePgxPool(dbPool)
		logger.Info("Database connection pool established.")

		if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		repos.ReconcileReportRepo = pgsql.NewPgxReconcileReportRepository(dbPool)
	} else {
		logger.Warn("No database configured, reconcile reports are not persisted")
	}

	// The operator's bearer is forwarded when present; the token file covers
	// calls made without one.
	var fallback oauth2.TokenSource
	if cfg.BackendTokenFile != "" {
		fallback = credentials.FileTokenSource{Path: cfg.BackendTokenFile}
	}
	backend := rest.New(rest.Config{
		BaseURL:           cfg.BackendBaseURL,
		Timeout:           cfg.BackendTimeout,
		RequestsPerSecond: cfg.BackendRequestsPerSecond,
		Burst:             cfg.BackendBurst,
	}, credentials.NewResolver(fallback))

	serviceContainer := services.NewServiceContainer(cfg, backend, repos)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	r := gin.New()

	// Global middleware (logging, metrics, recovery, cors, rate limit)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		middleware.MetricsMiddleware(),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("backend", cfg.BackendBaseURL),
		slog.String("add_policy", string(cfg.ReconcileAddPolicy)))
	return r.Run(":" + cfg.Port)
}

// runMigrations applies every pending "up" migration from ./migrations.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")
	// Using pgx/v5/stdlib driver to be compatible with the main pool
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
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return errors.Join(sourceErr, dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
