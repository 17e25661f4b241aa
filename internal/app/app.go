// Package app wires configuration, logging and the database for the command-line tools.
package app

import (
	"fmt"
	"time"

	"preschoolfees/internal/config"
	"preschoolfees/internal/database"
	"preschoolfees/internal/logger"
	"preschoolfees/internal/models"
)

// App holds what every command needs after startup
type App struct {
	Config   *config.Config
	DB       *database.DB
	Location *time.Location
}

// Open loads configuration, configures logging, connects to the database
// and brings the schema up to date.
func Open() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger.Configure(logger.Config{Level: level, Pretty: cfg.LogPretty})

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Debug().Str("type", cfg.DatabaseType).Msg("database connection established")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &App{Config: cfg, DB: db, Location: location}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}

// Today is the current calendar day in the configured timezone
func (a *App) Today() time.Time {
	return models.Date(time.Now().In(a.Location))
}

// ParseDate reads a YYYY-MM-DD reference date; empty means today
func (a *App) ParseDate(value string) (time.Time, error) {
	if value == "" {
		return a.Today(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}
