package e2e_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Server is a running PostgreSQL server.
type Server struct {
	Host     string
	Port     int
	User     string
	Password string
}

var (
	testServer     Server
	testServerOnce sync.Once
	testCleanup    func()
)

// getSharedPostgresServer returns a shared PostgreSQL server for E2E tests.
// The container is reused across all tests for performance.
func getSharedPostgresServer(t *testing.T) Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	testServerOnce.Do(func() {
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

		cfg, err := pgx.ParseConfig(connectionStr)
		if err != nil {
			t.Fatalf("failed to parse connection string: %v", err)
		}

		testServer = Server{
			Host:     cfg.Host,
			Port:     int(cfg.Port),
			User:     cfg.User,
			Password: cfg.Password,
		}
	})

	if testServer.Host == "" {
		t.Fatal("postgres container is not available")
	}
	return testServer
}

// connect opens a pgx connection to database on the shared server.
func connect(t *testing.T, server Server, database string) *pgx.Conn {
	t.Helper()

	cfg, err := pgx.ParseConfig("sslmode=disable")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Host = server.Host
	cfg.Port = uint16(server.Port)
	cfg.User = server.User
	cfg.Password = server.Password
	cfg.Database = database
	cfg.Fallbacks = nil

	conn, err := pgx.ConnectConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect %s: %v", database, err)
	}
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}
