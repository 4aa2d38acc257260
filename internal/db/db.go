package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trinitydb/impossible-trinity/internal/config"
)

const (
	postgresScheme = "postgres://"
	postgresAlt    = "postgresql://"
	sqliteScheme   = "sqlite://"

	// Foreign keys are off by default in sqlite; the comment cascade needs them.
	sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// Open connects using the configured driver.
func Open(conf *config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch conf.Driver {
	case "postgres":
		db, err = OpenPostgres(conf.Postgres)
	case "sqlite", "":
		db, err = OpenSQLite(conf.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", conf.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = configurePool(db, conf); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenWithURL accepts postgres://... and sqlite://path URLs, as used by the
// DATABASE_URL environment variable.
func OpenWithURL(url string, conf *config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch {
	case strings.HasPrefix(url, postgresScheme), strings.HasPrefix(url, postgresAlt):
		db, err = OpenPostgresWithURL(url)
	case strings.HasPrefix(url, sqliteScheme):
		db, err = OpenSQLite(strings.TrimPrefix(url, sqliteScheme))
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL: must start with %q or %q", postgresScheme, sqliteScheme)
	}
	if err != nil {
		return nil, err
	}

	if err = configurePool(db, conf); err != nil {
		return nil, err
	}

	return db, nil
}

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		conf.Host, conf.Port, conf.User, conf.Password, conf.DBName, conf.SSLMode,
	)

	return open(postgres.Open(dsn))
}

func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	return open(postgres.Open(url))
}

// OpenSQLite opens (and creates if needed) the sqlite database file at path
// with foreign keys enforced.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + sqlitePragmas
	} else {
		dsn += "?" + sqlitePragmas
	}

	return open(sqlite.Open(dsn))
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return db, nil
}

func configurePool(db *gorm.DB, conf *config.DatabaseConfig) error {
	if conf == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB -> %w", err)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}

	return nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		zap.NewStdLog(zap.L().Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
