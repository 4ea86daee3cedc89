package users

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
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^\s*INSERT\s+INTO\s+users\s*\(name,\s*email,\s*phone_number,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now)
	mock.ExpectQuery(insertQ).
		WithArgs("alice", "alice@example.com", nil, []byte("hash")).
		WillReturnRows(rows)

	u := &models.User{Name: "alice", Email: "alice@example.com", PasswordHash: []byte("hash")}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || got.Name != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("bob", nil, "+15550001", []byte("hash")).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Name: "bob", PhoneNumber: "+15550001", PasswordHash: []byte("hash")})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "hash", "created_at", "updated_at"}).
		AddRow("u-1", "alice", "alice@example.com", "", []byte("hash"), now, now)
	mock.ExpectQuery(`(?s)SELECT\s+id,\s*name.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || string(got.PasswordHash) != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByPhone_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+phone_number\s*=\s*\$1`).
		WithArgs("+15550001").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPhone(context.Background(), "+15550001")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+id::text\s*=\s*\$1\)`
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("gone").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), "u-1")
	if err != nil || !ok {
		t.Fatalf("Exists(u-1) = %v, %v", ok, err)
	}
	ok, err = repo.Exists(context.Background(), "gone")
	if err != nil || ok {
		t.Fatalf("Exists(gone) = %v, %v", ok, err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("u-1", []byte("new")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-2", []byte("new")).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePassword(context.Background(), "u-1", []byte("new")); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), "u-2", []byte("new")); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestTouchLastLogin_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+users\s+SET\s+last_login`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("ra")))

	err := repo.TouchLastLogin(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`rows affected error`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("alice", "alice@example.com", nil, []byte("hash")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{Name: "alice", Email: "alice@example.com", PasswordHash: []byte("hash")})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}
