package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var todoColumns = []string{"id", "user_id", "title", "description", "is_done", "due_at", "created_at", "updated_at", "deleted_at"}

func newTodoMock(t *testing.T) (pgxmock.PgxPoolIface, *PGTodoRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPGTodoRepo(mock)
}

func TestPGTodoRepo_List_ScopedByOwner(t *testing.T) {
	mock, r := newTodoMock(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`FROM todos WHERE user_id = \$1 AND deleted_at IS NULL ORDER BY created_at DESC`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(todoColumns).
			AddRow(int64(1), int64(7), "buy milk", "", false, nil, now, now, nil).
			AddRow(int64(2), int64(7), "walk dog", "", true, nil, now, now, nil))

	list, err := r.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(7), list[0].UserID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_GetByID(t *testing.T) {
	mock, r := newTodoMock(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`FROM todos WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(todoColumns).
			AddRow(int64(1), int64(7), "buy milk", "", false, nil, now, now, nil))
	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)

	mock.ExpectQuery(`FROM todos WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, 2)
	require.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_SoftDelete(t *testing.T) {
	mock, r := newTodoMock(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE todos SET deleted_at = \$2, updated_at = \$2 WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SoftDelete(ctx, 1))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Search_ScopedByOwner(t *testing.T) {
	mock, r := newTodoMock(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`FROM todos WHERE user_id = \$1 AND deleted_at IS NULL AND \(title ILIKE \$2 OR description ILIKE \$2\)`).
		WithArgs(int64(7), "%milk%").
		WillReturnRows(pgxmock.NewRows(todoColumns).
			AddRow(int64(1), int64(7), "buy milk", "", false, nil, now, now, nil))

	list, err := r.Search(ctx, 7, "milk")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}
