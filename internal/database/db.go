package database

import (
	"fmt"
	"time"

	"go-print-erp/internal/config"
	"go-print-erp/internal/logger"
	"go-print-erp/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectAttempts = 5

// Connect opens the configured database, waiting for it to come up.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	log := logger.WithComponent("database")

	level := gormlogger.Warn
	if cfg.DBDebug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector(cfg), gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msgf("Failed to connect to database. Retrying in 2 seconds... (%d/%d)", i+1, connectAttempts)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s after %d attempts: %w", cfg.DBDriver, connectAttempts, err)
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("Connected to database")
	return db, nil
}

func dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		return sqlite.Open(cfg.DBDSN)
	}
	return mysql.Open(cfg.DBDSN)
}

// Migrate syncs the schema of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log := logger.WithComponent("database")
	log.Info().Msg("Database schema synced")
	return nil
}
