package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/gormstore"
	"github.com/Freeeeeet/boat_booking/internal/repository/memory"
	"github.com/Freeeeeet/boat_booking/internal/repository/postgres"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
)

// Database is an opened datastore and the handles needed to migrate and close it.
type Database struct {
	Driver Driver
	Store  repository.Store

	pool   *pgxpool.Pool
	gormDB *gorm.DB
	logger *zap.Logger
}

// ResolveDriver maps DATABASE_URL onto a driver and, for sqlite, a file path.
//
//	postgres://... | postgresql://...  PostgreSQL through pgx
//	sqlite://boat.db | sqlite:///abs.db  sqlite through gorm
//	memory://                           process memory, lost on exit
//
// Anything else is taken as a sqlite file path.
func ResolveDriver(dsn string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, "", nil
	case strings.HasPrefix(dsn, "memory://"):
		return DriverMemory, "", nil
	case strings.HasPrefix(dsn, "sqlite://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "boat.db"
		}
		return DriverSQLite, path, nil
	case dsn == "":
		return "", "", fmt.Errorf("database url is empty")
	}
	return DriverSQLite, dsn, nil
}

func OpenDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*Database, error) {
	driver, sqlitePath, err := ResolveDriver(dsn)
	if err != nil {
		return nil, err
	}

	db := &Database{Driver: driver, logger: logger}
	switch driver {
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		db.pool = pool
		db.Store = postgres.NewStore(pool)

	case DriverSQLite:
		if sqlitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		gormDB, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
			TranslateError: true,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", sqlitePath, err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		db.gormDB = gormDB
		db.Store = gormstore.New(gormDB)

	case DriverMemory:
		db.Store = memory.NewStore()
	}

	logger.Info("Database opened", zap.String("driver", string(driver)))
	return db, nil
}

// Migrate brings the schema up to date: goose for PostgreSQL, AutoMigrate for sqlite.
func (db *Database) Migrate(ctx context.Context) error {
	switch db.Driver {
	case DriverPostgres:
		migrator, err := NewMigrator(db.pool, db.logger)
		if err != nil {
			return err
		}
		defer migrator.Close()
		return migrator.Run(ctx)

	case DriverSQLite:
		if err := gormstore.AutoMigrate(db.gormDB.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		db.logger.Info("Schema auto-migrated", zap.String("driver", string(db.Driver)))
	}
	return nil
}

func (db *Database) Close() error {
	switch {
	case db.pool != nil:
		db.pool.Close()
	case db.gormDB != nil:
		sqlDB, err := db.gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
