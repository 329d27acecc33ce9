package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/config"
	"example.com/brickworks/services/production/models"
)

// Connect opens the write database and, when a read-only DSN is configured,
// a second read connection. Automigration runs against the write side only.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, *gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to write database")
	}

	if cfg.EnableMigrations {
		if err := models.SetupModels(db); err != nil {
			return nil, nil, errors.Wrap(err, "failed to run migrations")
		}
	}

	if err := tunePool(db, 10, 50); err != nil {
		return nil, nil, err
	}

	readOnlyDB := db
	if cfg.ReadOnlyDSN != "" {
		readOnlyDB, err = gorm.Open(postgres.Open(cfg.ReadOnlyDSN), &gorm.Config{})
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to read-only database")
		}
		if err := tunePool(readOnlyDB, 20, 100); err != nil {
			return nil, nil, err
		}
	}

	return db, readOnlyDB, nil
}

func tunePool(db *gorm.DB, idle, open int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying DB connection")
	}
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}
