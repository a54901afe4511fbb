package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tripplanner-backend/models"
)

// Connect opens PostgreSQL through gorm and migrates the schema.
func Connect(databaseURL string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Database connected")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	slog.Info("Database migrated")

	return db, nil
}

// Migrate creates or updates the tables this service reads and writes.
// Plans, members and users are owned upstream; they are migrated here so
// a standalone deployment has them.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.PlanMember{},
		&models.Expense{},
		&models.ExpenseParticipant{},
		&models.Activity{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
