package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/database"
	"github.com/sagarc03/userload/database/postgres"
	"github.com/sagarc03/userload/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var existsQuery = regexp.QuoteMeta(`SELECT 1 FROM pg_database WHERE datname = $1`)

// Test helpers

func newTestConfig() database.Config {
	return database.Config{
		Credentials: userload.Credentials{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "postgres",
		},
		Table: "users",
	}
}

func newTestDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]dataset.Column{{Name: "gender", Type: dataset.Text}, {Name: "dob_age", Type: dataset.Integer}},
		[][]any{{"male", int64(45)}},
	)
	require.NoError(t, err)
	return ds
}

// mockOpener serves one sqlmock connection per database name.
func mockOpener(t *testing.T, names ...string) (postgres.Opener, map[string]sqlmock.Sqlmock) {
	t.Helper()
	dbs := make(map[string]*sql.DB, len(names))
	mocks := make(map[string]sqlmock.Sqlmock, len(names))
	for _, name := range names {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		dbs[name] = db
		mocks[name] = mock
	}

	t.Cleanup(func() {
		for name, mock := range mocks {
			assert.NoError(t, mock.ExpectationsWereMet(), "database %s", name)
		}
	})

	open := func(_ context.Context, creds userload.Credentials) (*sql.DB, error) {
		db, ok := dbs[creds.Database]
		if !ok {
			return nil, fmt.Errorf("unexpected open of %s", creds.Database)
		}
		delete(dbs, creds.Database)
		return db, nil
	}
	return open, mocks
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resumes last active database", func(t *testing.T) {
		open, mocks := mockOpener(t, "postgres")
		mocks["postgres"].ExpectQuery(existsQuery).WithArgs("people").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mocks["postgres"].ExpectClose()

		name, err := database.Resolve(ctx, newTestConfig(), "people", postgres.WithOpener(open))
		require.NoError(t, err)
		assert.Equal(t, "people", name)
	})

	t.Run("creates default database with table", func(t *testing.T) {
		open, mocks := mockOpener(t, "postgres", "default_db0")
		mocks["postgres"].ExpectQuery(existsQuery).WithArgs("default_db0").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
		mocks["postgres"].ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "default_db0"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mocks["default_db0"].ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "users" ("gender" TEXT, "dob_age" INTEGER)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mocks["default_db0"].ExpectClose()
		mocks["postgres"].ExpectClose()

		name, err := database.Resolve(ctx, newTestConfig(), "",
			postgres.WithOpener(open),
			postgres.WithSample(newTestDataset(t)),
		)
		require.NoError(t, err)
		assert.Equal(t, "default_db0", name)
	})

	t.Run("admin unreachable", func(t *testing.T) {
		open := func(context.Context, userload.Credentials) (*sql.DB, error) {
			return nil, errors.New("connection refused")
		}

		_, err := database.Resolve(ctx, newTestConfig(), "people", postgres.WithOpener(open))
		assert.True(t, userload.IsKind(err, userload.KindConnection))
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("creates table and inserts", func(t *testing.T) {
		open, mocks := mockOpener(t, "people")
		mock := mocks["people"]
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "users" ("gender" TEXT, "dob_age" INTEGER)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users" ("gender","dob_age") VALUES ($1,$2)`)).
			WithArgs("male", int64(45)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectClose()

		err := database.Load(ctx, newTestConfig(), "people", newTestDataset(t), postgres.WithOpener(open))
		require.NoError(t, err)
	})

	t.Run("insert failure still closes", func(t *testing.T) {
		open, mocks := mockOpener(t, "people")
		mock := mocks["people"]
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "users"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).WillReturnError(errors.New("value too long"))
		mock.ExpectRollback()
		mock.ExpectClose()

		err := database.Load(ctx, newTestConfig(), "people", newTestDataset(t), postgres.WithOpener(open))
		assert.True(t, userload.IsKind(err, userload.KindInsertion))
	})

	t.Run("nil dataset", func(t *testing.T) {
		err := database.Load(ctx, newTestConfig(), "people", nil)
		assert.ErrorIs(t, err, userload.ErrInvalidInput)
	})

	t.Run("default table", func(t *testing.T) {
		open, mocks := mockOpener(t, "people")
		mock := mocks["people"]
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "data_table"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "data_table"`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectClose()

		cfg := newTestConfig()
		cfg.Table = ""
		require.NoError(t, database.Load(ctx, cfg, "people", newTestDataset(t), postgres.WithOpener(open)))
	})
}
