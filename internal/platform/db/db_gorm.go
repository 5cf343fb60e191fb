// Package db opens the GORM connection used by the repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"account_backend/internal/feature/auth/domain/entity"
	"account_backend/internal/platform/db/migrations"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultConnectTimeout = 60 * time.Second
	slowQueryThreshold    = 200 * time.Millisecond
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds the database connection settings.
type Config struct {
	Driver        string
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	SQLitePath    string
	RunMigrations bool
}

// LoadConfigFromEnv reads the database settings from environment variables.
// DB_DRIVER defaults to postgres.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:        os.Getenv("DB_DRIVER"),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       os.Getenv("DB_SSLMODE"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "./account.db"
	}
	return cfg
}

// BuildDSN returns the connection string for cfg.Driver.
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Opener opens a GORM connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor returns the Opener matching driver.
func OpenerFor(driver string) (Opener, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)),
	}
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormCfg)
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gormCfg)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// newGormLogger はGORMのログをwへ出力します。
// 未登録ユーザーの検索は通常の結果なので record not found は出力しません。
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects with retry and runs migrations when cfg.RunMigrations is set.
func OpenDB(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), defaultConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("DB connected", "driver", cfg.Driver)

	if cfg.Driver == DriverSQLite {
		// SQLite は書き込みが1本のみ。:memory: も接続ごとに別DBになるため固定する
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the users table and its unique email index.
// PostgreSQL uses the versioned goose migrations; other dialects use AutoMigrate.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == DriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return RunMigrations(context.Background(), sqlDB)
	}
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded PostgreSQL migrations with goose.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
