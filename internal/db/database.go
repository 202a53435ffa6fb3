/**
 * @description
 * Relational database connection manager using GORM.
 * DATABASE_URL selects the dialect: sqlite:///path for local development
 * (the default), postgres:// for deployments. The schema for all five record
 * tables is migrated on connect so the persistent tier is usable immediately.
 *
 * @dependencies
 * - gorm.io/gorm: ORM library
 * - gorm.io/driver/postgres: Postgres driver
 * - gorm.io/driver/sqlite: SQLite driver
 */

package db

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/logger"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// ConnectDatabase opens the persistent store and migrates the record schema.
func ConnectDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := gormLogger.Error
	if cfg.Server.Env == "development" {
		gormLogLevel = gormLogger.Warn
	}
	gormCfg := &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogLevel)}

	var (
		db  *gorm.DB
		err error
	)
	if path, ok := cfg.DB.SQLitePath(); ok {
		db, err = gorm.Open(sqlite.Open(path), gormCfg)
	} else {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DB.URL,
			PreferSimpleProtocol: true, // avoid stmtcache collisions behind poolers
		}), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("✅ Connected to database")
	return db, nil
}

// Migrate creates or updates the tables backing the persistent tier.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Price{},
		&models.FinancialMetric{},
		&models.LineItem{},
		&models.InsiderTrade{},
		&models.CompanyNews{},
	)
}
