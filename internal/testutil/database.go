package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wildhaven/parkops-backend/internal/store"
)

// TestDatabase wraps a real PostgreSQL database for testing. It
// satisfies the api.DatabaseService interface so it can back the
// server directly.
type TestDatabase struct {
	container testcontainers.Container
	pool      *pgxpool.Pool
	queries   *store.Store
}

// NewTestDatabase creates a new test database using testcontainers
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, pool.Ping(ctx), "Failed to ping database")

	return &TestDatabase{
		container: postgresContainer,
		pool:      pool,
		queries:   store.New(pool),
	}
}

func (tdb *TestDatabase) Queries() *store.Store {
	return tdb.queries
}

func (tdb *TestDatabase) Pool() *pgxpool.Pool {
	return tdb.pool
}

func (tdb *TestDatabase) Close() {
	tdb.pool.Close()
}

// RunMigrations applies the goose migrations against the container.
func (tdb *TestDatabase) RunMigrations(t *testing.T) {
	sqlDB := stdlib.OpenDBFromPool(tdb.pool)
	defer sqlDB.Close()

	require.NoError(t, goose.SetDialect("postgres"))

	// Relative path from the package under test to the project root.
	err := goose.Up(sqlDB, "../../db/migrations")
	require.NoError(t, err, "Failed to run goose migrations")
}

// Cleanup closes the database connection and terminates the container
func (tdb *TestDatabase) Cleanup() {
	ctx := context.Background()
	tdb.pool.Close()
	_ = tdb.container.Terminate(ctx)
}

// CleanupDatabase truncates all tables for test isolation
func (tdb *TestDatabase) CleanupDatabase(t *testing.T) {
	ctx := context.Background()

	// Reverse dependency order.
	tables := []string{
		"notifications",
		"bookings",
		"applications",
		"emergencies",
		"animal_cases",
		"vehicles",
		"activities",
		"users",
	}

	for _, table := range tables {
		_, err := tdb.pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Logf("Failed to truncate table %s: %v", table, err)
		}
	}
}
