package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexivanou/worldcities/internal/config"
	"github.com/alexivanou/worldcities/internal/database"
	"github.com/alexivanou/worldcities/internal/importer"
	"github.com/alexivanou/worldcities/internal/repository"
	"github.com/alexivanou/worldcities/internal/source"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	var (
		path  = flag.String("source", "", "Path to the worldcities workbook (overrides SEEDER_SOURCE_PATH)")
		sheet = flag.String("sheet", "", "Worksheet name (overrides SEEDER_SHEET)")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *path != "" {
		cfg.Seeder.SourcePath = *path
	}
	if *sheet != "" {
		cfg.Seeder.Sheet = *sheet
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// A memory database starts empty and needs its schema first.
	if cfg.DB.IsMemory() {
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			logger.Fatal("Failed to init migration driver", zap.Error(err))
		}
		m, err := migrate.NewWithDatabaseInstance(cfg.DB.MigrationsSource("migrations"), "sqlite3", driver)
		if err != nil {
			logger.Fatal("Failed to init migration", zap.Error(err))
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal("Failed to run migration", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	im := importer.New(
		cfg.App.IsDevelopment(),
		source.NewFile(cfg.Seeder.SourcePath, cfg.Seeder.Sheet),
		repos.Country,
		repos.City,
		logger,
	)

	logger.Info("Starting data import...", zap.String("source", cfg.Seeder.SourcePath))
	result, err := im.Run(ctx)
	if err != nil {
		if errors.Is(err, importer.ErrUnauthorized) {
			logger.Fatal("Import refused; set APP_ENV=development", zap.String("env", string(cfg.App.Env)))
		}
		logger.Fatal("Import failed", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("countries", result.Countries),
		zap.Int("cities", result.Cities),
	)
}
