// Package integration runs the catalog backend against a real PostgreSQL
// started with testcontainers. Tests are skipped under -short.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/migration"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	testDBName    = "catalog_test"
	testDBUser    = "postgres"
	testDBPass    = "admin123"
)

// catalogTables are emptied between tests; schema_migrations is left alone
var catalogTables = []string{"products", "sync_runs"}

// postgresServer is started once per package and migrated once
var postgresServer struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	cfg       config.DatabaseConfig
}

// TestDB is a migrated, empty catalog database
type TestDB struct {
	*persistence.Database
}

// NewTestDB returns a connection to the package's PostgreSQL container
// with every catalog table truncated. The connection closes on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	cfg := startPostgres(t)
	log := zaptest.NewLogger(t)

	db, err := persistence.NewDatabase(&cfg,
		persistence.WithGormLogger(logger.NewGormLogger(log, gormlogger.Warn)))
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	tdb := &TestDB{Database: db}
	tdb.Reset(t)
	return tdb
}

// Reset truncates the catalog tables
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()
	for _, table := range catalogTables {
		require.NoError(t, tdb.DB.Exec("TRUNCATE TABLE "+table).Error, "truncate %s", table)
	}
}

func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()

	postgresServer.Lock()
	defer postgresServer.Unlock()
	if postgresServer.container != nil {
		return postgresServer.cfg
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         testDBUser,
		Password:     testDBPass,
		DBName:       testDBName,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	// closing the migrator closes its pool too
	db, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err, "connect for migrations")
	m, err := migration.New(db.SQLDB(), migration.Source{FS: migrations.FS}, zaptest.NewLogger(t))
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")
	_ = m.Close()

	postgresServer.container = container
	postgresServer.cfg = cfg
	return cfg
}

// CleanupSharedContainer terminates the package's container; call it from TestMain
func CleanupSharedContainer() {
	postgresServer.Lock()
	defer postgresServer.Unlock()

	if postgresServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgresServer.container.Terminate(ctx)
	postgresServer.container = nil
}
