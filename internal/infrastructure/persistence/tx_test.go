package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestTransactor_CommitsAndNests(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE b").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := conn(ctx, db).ExecContext(ctx, "UPDATE a"); err != nil {
			return err
		}
		return tr.WithinTx(ctx, func(ctx context.Context) error {
			_, err := conn(ctx, db).ExecContext(ctx, "UPDATE b")
			return err
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, containsPattern("50% off_now"))
}
