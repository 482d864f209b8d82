// Package storage implements the relational persistence layer over Postgres.
package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agents-play/server/internal/agent/model"
	logx "github.com/agents-play/server/pkg/logger"
)

// Open connects to Postgres, applies pool settings, and migrates the schema.
func Open(cfg model.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&chatRoomRecord{}, &todoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logx.Debug().Msg("Database connected and migrated")
	return db, nil
}
