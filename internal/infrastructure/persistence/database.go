package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database owns the catalog store connection pool
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger  logger.Interface
	plugins []gorm.Plugin
	dialect gorm.Dialector
}

// WithGormLogger routes GORM statements through l instead of discarding them
func WithGormLogger(l logger.Interface) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
	}
}

// WithPlugins registers GORM plugins (tracing) before the first query runs
func WithPlugins(plugins ...gorm.Plugin) DatabaseOption {
	return func(o *databaseOptions) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// withDialector replaces the postgres dialector; tests open over sqlmock
func withDialector(d gorm.Dialector) DatabaseOption {
	return func(o *databaseOptions) {
		o.dialect = d
	}
}

// NewDatabase opens the product store, sizes the pool from cfg and verifies
// the connection with a ping.
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := databaseOptions{logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialect == nil {
		o.dialect = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(o.dialect, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		// plugins are registered first, then the pool is pinged below
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	for _, p := range o.plugins {
		if err := db.Use(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to register plugin %s: %w", p.Name(), err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// SQLDB exposes the pool for golang-migrate
func (d *Database) SQLDB() *sql.DB {
	return d.sqlDB
}

// PingContext backs the /health database check
func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// InUse reports how many pooled connections are busy
func (d *Database) InUse() int {
	return d.sqlDB.Stats().InUse
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sqlDB.Close()
}
