package repository

import (
	"fmt"

	"github.com/shareport/shareport/internal/config"
	"github.com/shareport/shareport/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch cfg.DatabaseDriver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DatabaseDSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.AdminSession{},
		&domain.LoginAttempt{},
		&domain.Project{},
		&domain.StoredFile{},
		&domain.SharePassword{},
		&domain.DownloadLog{},
		&domain.GlobalShareSettings{},
		&domain.ProjectShareSettings{},
		&domain.FileShareSettings{},
	)
}
