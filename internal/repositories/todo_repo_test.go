package repositories

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
	"todoapi/internal/query"
)

func newTodoRepo(t *testing.T) (TodoRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return TodoRepository{DB: db}, mock, func() { db.Close() }
}

func todoRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "description", "completed", "priority", "created_at", "updated_at"}).
		AddRow(1, "write tests", "", false, 2, now, now)
}

func TestTodoListRendersScopedQuery(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	spec, err := query.Build(url.Values{"priority[gte]": {"2"}}, 7)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	mock.ExpectQuery(`SELECT id, title, COALESCE\(description,''\), completed, priority, created_at, updated_at FROM todos WHERE owner_id = \? AND priority >= \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(int64(7), 2, query.DefaultLimit, 0).
		WillReturnRows(todoRows())

	todos, err := repo.List(context.Background(), spec)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "write tests" {
		t.Fatalf("todos = %+v", todos)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTodoCountUsesSamePredicates(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	spec, err := query.Build(url.Values{"completed": {"true"}, "page": {"2"}, "limit": {"10"}}, 7)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	// Count carries the filter predicates but no LIMIT/OFFSET.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM todos WHERE owner_id = \? AND completed = \?`).
		WithArgs(int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.Count(context.Background(), spec)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if n != 12 {
		t.Fatalf("count = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTodoGetByIDMissIsNotFound(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	mock.ExpectQuery(`FROM todos WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 5, 7)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTodoUpdateAppliesOnlyPresentFields(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	getQuery := `FROM todos WHERE id = \? AND owner_id = \?`
	fullRow := func() *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows([]string{"id", "title", "description", "completed", "priority", "owner_id", "created_at", "updated_at"}).
			AddRow(1, "old title", "", false, 0, 7, now, now)
	}

	mock.ExpectQuery(getQuery).WithArgs(int64(1), int64(7)).WillReturnRows(fullRow())
	mock.ExpectExec(`UPDATE todos SET title=\?, updated_at=NOW\(\) WHERE id = \? AND owner_id = \?`).
		WithArgs("new title", int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(getQuery).WithArgs(int64(1), int64(7)).WillReturnRows(fullRow())

	title := "new title"
	if _, err := repo.Update(context.Background(), 1, 7, TodoPatch{Title: &title}); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTodoDeleteIdempotent(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	mock.ExpectExec(`DELETE FROM todos WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM todos WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 1, 7); err != nil {
		t.Fatalf("first delete error: %v", err)
	}

	err := repo.Delete(context.Background(), 1, 7)
	if !domain.IsNotFound(err) {
		t.Fatalf("second delete: expected NotFoundError, got %v", err)
	}
}

func TestTodoCreateReturnsFreshRow(t *testing.T) {
	repo, mock, closeDB := newTodoRepo(t)
	defer closeDB()

	mock.ExpectExec(`INSERT INTO todos`).
		WithArgs("buy milk", "", false, 0, int64(7)).
		WillReturnResult(sqlmock.NewResult(3, 1))

	now := time.Now()
	mock.ExpectQuery(`FROM todos WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "completed", "priority", "owner_id", "created_at", "updated_at"}).
			AddRow(3, "buy milk", "", false, 0, 7, now, now))

	todo, err := repo.Create(context.Background(), models.Todo{Title: "buy milk", OwnerID: 7})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if todo.ID != 3 || todo.OwnerID != 7 {
		t.Fatalf("todo = %+v", todo)
	}
}
