package database

import (
	"fmt"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "github.com/fileshare/fileshare/pkg/logger"
)

// gormLogWriter forwards GORM's warnings and SQL errors into the JSON log stream.
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	applog.Warn("gorm_log", map[string]interface{}{"message": fmt.Sprintf(format, args...)})
}

func newGormLogger() logger.Interface {
	return logger.New(gormLogWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.DriverPostgres, "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema. On PostgreSQL it also installs the
// check that keeps the link token and its expiry set or cleared together.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.FileShare{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	constraint := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'file_link_pair_check'
  ) THEN
    ALTER TABLE files
    ADD CONSTRAINT file_link_pair_check
    CHECK ((link_token IS NULL) = (link_expires_at IS NULL));
  END IF;
END $$;`

	return db.Exec(constraint).Error
}
