package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyAccessToken)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyAccessToken, "a1"))
	require.NoError(t, s.Set(ctx, KeyRefreshToken, "r1"))

	v, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1", v)

	require.NoError(t, s.Set(ctx, KeyAccessToken, "a2"))
	v, err = s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a2", v)

	require.NoError(t, s.Remove(ctx, KeyAccessToken))
	require.NoError(t, s.Remove(ctx, KeyAccessToken))

	_, err = s.Get(ctx, KeyAccessToken)
	require.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "r1", v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")

	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Set(context.Background(), KeyUser, `{"id":1}`))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(context.Background(), KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, v)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), "redis://localhost")
	require.Error(t, err)
}

func TestSQLStore_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newSQLStore(db, dialectPostgres)

	mock.ExpectQuery(`SELECT value FROM client_storage WHERE name = \$1`).
		WithArgs(KeyAccessToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("token"))
	mock.ExpectExec(`INSERT INTO client_storage \(name, value, updated_at\) VALUES \(\$1, \$2, CURRENT_TIMESTAMP\)`).
		WithArgs(KeyRefreshToken, "r").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM client_storage WHERE name = \$1`).
		WithArgs(KeyUser).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := s.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token", v)

	require.NoError(t, s.Set(context.Background(), KeyRefreshToken, "r"))
	require.NoError(t, s.Remove(context.Background(), KeyUser))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newSQLStore(db, dialectSQLite)

	mock.ExpectQuery(`SELECT value FROM client_storage WHERE name = \?`).
		WithArgs(KeyAccessToken).
		WillReturnError(sql.ErrNoRows)

	_, err = s.Get(context.Background(), KeyAccessToken)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_RetriesTransientErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newSQLStore(db, dialectPostgres)
	s.delays = []time.Duration{time.Millisecond, time.Millisecond}

	mock.ExpectExec(`INSERT INTO client_storage`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	mock.ExpectExec(`INSERT INTO client_storage`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), KeyAccessToken, "a"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DoesNotRetryPermanentErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newSQLStore(db, dialectPostgres)
	s.delays = []time.Duration{time.Millisecond}

	permanent := errors.New("syntax error")
	mock.ExpectExec(`DELETE FROM client_storage`).WillReturnError(permanent)

	err = s.Remove(context.Background(), KeyAccessToken)
	require.ErrorIs(t, err, permanent)
	require.NoError(t, mock.ExpectationsWereMet())
}
