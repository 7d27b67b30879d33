package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testCreds     userload.Credentials
	testCredsOnce sync.Once
	testCleanup   func()
)

// TestMain terminates the shared container after all tests ran.
func TestMain(m *testing.M) {
	code := m.Run()
	if testCleanup != nil {
		testCleanup()
	}
	os.Exit(code)
}

// getSharedTestServer starts one postgres container for all integration tests
// and returns credentials for its administrative database.
func getSharedTestServer(t *testing.T) userload.Credentials {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testCredsOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		testCleanup = func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate container: %s\n", err)
			}
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}

		cfg, err := pgconn.ParseConfig(connectionStr)
		if err != nil {
			t.Fatalf("failed to parse connection string: %v", err)
		}

		testCreds = userload.Credentials{
			Host:          cfg.Host,
			Port:          int(cfg.Port),
			User:          cfg.User,
			Password:      cfg.Password,
			Database:      userload.DefaultAdminDatabase,
			AdminDatabase: userload.DefaultAdminDatabase,
			SSLMode:       "disable",
		}
	})

	if testCreds.Host == "" {
		t.Fatal("postgres container is not available")
	}
	return testCreds
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// dropDatabase force-drops name for test cleanup.
func dropDatabase(t *testing.T, admin userload.Credentials, name string) {
	t.Helper()
	ctx := context.Background()

	db, err := postgres.OpenDB(ctx, admin)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)")
	assert.NoError(t, err, "drop database %s", name)
}

// countRows returns the number of rows in table of database.
func countRows(t *testing.T, creds userload.Credentials, table string) int {
	t.Helper()
	ctx := context.Background()

	db, err := postgres.OpenDB(ctx, creds)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	err = db.QueryRowContext(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	require.NoError(t, err)
	return n
}
