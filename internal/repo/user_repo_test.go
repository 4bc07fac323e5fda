package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newUserMock(t *testing.T) (pgxmock.PgxPoolIface, *PGUserRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPGUserRepo(mock)
}

func TestPGUserRepo_GetByUsername(t *testing.T) {
	mock, r := newUserMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "alice", "$2a$10$hash", time.Now()))
	u, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "alice", u.Username)

	mock.ExpectQuery(`SELECT id, username, password_hash, created_at FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGUserRepo_Create(t *testing.T) {
	mock, r := newUserMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash\)`).
		WithArgs("alice", "$2a$10$hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "alice", "$2a$10$hash", time.Now()))
	u, err := r.Create(ctx, "alice", "$2a$10$hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGUserRepo_Delete(t *testing.T) {
	mock, r := newUserMock(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 1))

	require.NoError(t, mock.ExpectationsWereMet())
}
