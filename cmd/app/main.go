package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/worldcities/internal/api"
	"github.com/alexivanou/worldcities/internal/config"
	"github.com/alexivanou/worldcities/internal/database"
	"github.com/alexivanou/worldcities/internal/importer"
	"github.com/alexivanou/worldcities/internal/repository"
	"github.com/alexivanou/worldcities/internal/service"
	"github.com/alexivanou/worldcities/internal/source"
	"github.com/alexivanou/worldcities/internal/stats"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.App)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database",
		zap.String("type", string(cfg.DB.Type)),
		zap.String("env", string(cfg.App.Env)),
	)

	if err := runMigrations(db, cfg); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	im := importer.New(
		cfg.App.IsDevelopment(),
		source.NewFile(cfg.Seeder.SourcePath, cfg.Seeder.Sheet),
		repos.Country,
		repos.City,
		logger.Named("importer"),
	)
	svc := service.NewService(repos.City, repos.Country, im)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
		// Imports of the full worksheet can take minutes.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	if app.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	sourceURL := cfg.DB.MigrationsSource("migrations")

	if cfg.DB.IsMemory() {
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourceURL, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
