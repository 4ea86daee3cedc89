package follows

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestFollow_Upsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+follows.*ON\s+CONFLICT\s*\(follower_id,\s*followee_id\)\s*DO\s+NOTHING`).
		WithArgs("v1", "a1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Follow(context.Background(), "v1", "a1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollow_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+follows`).WillReturnError(errors.New("fk violation"))

	err := repo.Follow(context.Background(), "v1", "nobody")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*fk violation`), err.Error())
}

func TestUnfollow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+follows\s+WHERE\s+follower_id\s*=\s*\$1\s+AND\s+followee_id\s*=\s*\$2`).
		WithArgs("v1", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Unfollow(context.Background(), "v1", "a1"))
}

func TestFollowingOf(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"followee_id"}).AddRow("a1").AddRow("a2")
	mock.ExpectQuery(`SELECT\s+followee_id\s+FROM\s+follows`).WithArgs("v1").WillReturnRows(rows)

	ids, err := repo.FollowingOf(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids)
}

func TestFollowingOf_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+followee_id`).WithArgs("lonely").
		WillReturnRows(sqlmock.NewRows([]string{"followee_id"}))

	ids, err := repo.FollowingOf(context.Background(), "lonely")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestFollowingOf_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"followee_id"}).AddRow("a1").RowError(0, errors.New("broken"))
	mock.ExpectQuery(`SELECT\s+followee_id`).WillReturnRows(rows)

	_, err := repo.FollowingOf(context.Background(), "v1")
	require.Error(t, err)
}

func TestFollow_UnknownFollowee(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+follows`).WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Follow(context.Background(), "v1", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
