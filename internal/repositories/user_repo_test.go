package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"todoapi/internal/domain"
)

func newUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return UserRepository{DB: db}, mock, func() { db.Close() }
}

func TestUserGetByIDNeverLoadsHash(t *testing.T) {
	repo, mock, closeDB := newUserRepo(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, email, COALESCE\(photo,''\), created_at, updated_at FROM users WHERE id = \?`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "photo", "created_at", "updated_at"}).
			AddRow(9, "Ada", "ada@example.com", "", now, now))

	u, err := repo.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash must stay empty on subject resolution")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserGetByIDMissIsNotFound(t *testing.T) {
	repo, mock, closeDB := newUserRepo(t)
	defer closeDB()

	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUserGetByEmailLoadsHashForLogin(t *testing.T) {
	repo, mock, closeDB := newUserRepo(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "photo", "password_hash", "created_at", "updated_at"}).
			AddRow(9, "Ada", "ada@example.com", "", "$2a$10$hash", now, now))

	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if u.PasswordHash != "$2a$10$hash" {
		t.Fatalf("hash = %q", u.PasswordHash)
	}
}

func TestUserCreateDuplicateEmailIsConflict(t *testing.T) {
	repo, mock, closeDB := newUserRepo(t)
	defer closeDB()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("Ada", "ada@example.com", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), "Ada", "ada@example.com", "hash")
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Field != "email" {
		t.Fatalf("field = %q", conflict.Field)
	}
}

func TestUserCreateOtherDBErrorPassesThrough(t *testing.T) {
	repo, mock, closeDB := newUserRepo(t)
	defer closeDB()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("Ada", "ada@example.com", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"})

	_, err := repo.Create(context.Background(), "Ada", "ada@example.com", "hash")
	var conflict domain.ConflictError
	if errors.As(err, &conflict) {
		t.Fatalf("non-duplicate errors must not become conflicts: %v", err)
	}
	if err == nil {
		t.Fatalf("expected an error")
	}
}
