package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sagarc03/userload"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("connection refused")

// fakeServer hands out scripted connections per database name, in order.
type fakeServer struct {
	t      *testing.T
	mu     sync.Mutex
	queues map[string][]func() (*sql.DB, error)
	mocks  []sqlmock.Sqlmock
	opened []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	s := &fakeServer{t: t, queues: map[string][]func() (*sql.DB, error){}}
	t.Cleanup(func() {
		for _, mock := range s.mocks {
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %s", err)
			}
		}
	})
	return s
}

// refuse makes the next open of name fail.
func (s *fakeServer) refuse(name string) {
	s.queues[name] = append(s.queues[name], func() (*sql.DB, error) {
		return nil, fmt.Errorf("dial %s: %w", name, errConnRefused)
	})
}

// accept makes the next open of name succeed with a fresh mock.
func (s *fakeServer) accept(name string) sqlmock.Sqlmock {
	s.t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(s.t, err)
	s.mocks = append(s.mocks, mock)
	s.queues[name] = append(s.queues[name], func() (*sql.DB, error) {
		return db, nil
	})
	return mock
}

func (s *fakeServer) open(_ context.Context, creds userload.Credentials) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened = append(s.opened, creds.Database)
	queue := s.queues[creds.Database]
	if len(queue) == 0 {
		return nil, fmt.Errorf("unexpected open of %s", creds.Database)
	}
	s.queues[creds.Database] = queue[1:]
	return queue[0]()
}

func testCredentials(database string) userload.Credentials {
	return userload.Credentials{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: database,
	}
}
