package posts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var postCols = []string{"id", "user_id", "body", "media_url", "deleted", "created_at", "updated_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+posts\s*\(user_id,\s*body,\s*media_url\).*RETURNING\s+id`).
		WithArgs("a1", "hello", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p1", now, now))

	got, err := repo.Create(context.Background(), &models.Post{AuthorID: "a1", Body: "hello"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "p1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected post: %+v", got)
	}
}

func TestCreate_WithMedia(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+posts`).
		WithArgs("a1", "pic", "http://s3/media/1_a.png").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p2", now, now))

	if _, err := repo.Create(context.Background(), &models.Post{AuthorID: "a1", Body: "pic", MediaURL: "http://s3/media/1_a.png"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+posts\s+WHERE\s+id::text\s*=\s*\$1\s+AND\s+NOT\s+deleted`).
		WithArgs("p-x").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "p-x"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdate_KeepsMediaWhenEmpty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)UPDATE\s+posts\s+SET\s+body\s*=\s*\$2,\s*media_url\s*=\s*COALESCE\(\$3,\s*media_url\).*RETURNING`).
		WithArgs("p1", "edited", nil).
		WillReturnRows(sqlmock.NewRows(postCols).AddRow("p1", "a1", "edited", "http://s3/media/x.png", false, now, now))

	got, err := repo.Update(context.Background(), "p1", "edited", "")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Body != "edited" || got.AuthorID != "a1" {
		t.Fatalf("unexpected post: %+v", got)
	}
}

func TestSoftDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+posts\s+SET\s+deleted\s*=\s*TRUE`
	mock.ExpectExec(q).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SoftDelete(context.Background(), "p1"); err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
	if err := repo.SoftDelete(context.Background(), "p1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("second delete: expected ErrorNotFound, got %v", err)
	}
}

func TestListByAuthor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(postCols).
		AddRow("p2", "a1", "second", "", false, now, now).
		AddRow("p1", "a1", "first", "", false, now.Add(-time.Minute), now)
	mock.ExpectQuery(`(?s)FROM\s+posts\s+WHERE\s+user_id::text\s*=\s*\$1\s+AND\s+NOT\s+deleted\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("a1").
		WillReturnRows(rows)

	got, err := repo.ListByAuthor(context.Background(), "a1")
	if err != nil {
		t.Fatalf("ListByAuthor error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" {
		t.Fatalf("unexpected posts: %+v", got)
	}
}

func TestFeedFor_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)JOIN\s+follows\s+f`).
		WithArgs("v1", 50).
		WillReturnError(errors.New("timeout"))

	_, err := repo.FeedFor(context.Background(), "v1", 50)
	if err == nil || !regexp.MustCompile(`failed to select posts: .*timeout`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
