// main.go
package main

import (
	"log"

	"reviewboard/cmd"
	"reviewboard/internal/data/repository"
	"reviewboard/internal/wire"
	"reviewboard/pkg/database"
	"reviewboard/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Duration("duplicate_window", config.Review.DuplicateWindow),
		zap.Bool("debug", config.App.Debug),
	)

	repos, closeStore, err := openStore(config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open review store", zap.Error(err))
	}
	defer closeStore()

	logger.Info("Database connected successfully")

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// openStore connects the configured driver and applies pending migrations.
func openStore(config utils.DatabaseConfig, logger *zap.Logger) (*repository.Repository, func(), error) {
	switch config.Driver {
	case utils.DriverSQLite:
		db, err := database.OpenSQLite(config.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewSQLiteRepository(db, logger), func() { db.Close() }, nil

	default:
		if err := database.MigratePostgres(config, logger); err != nil {
			return nil, nil, err
		}
		db, err := database.InitDB(config)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(db, logger), db.Close, nil
	}
}
