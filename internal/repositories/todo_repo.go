package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
	"todoapi/internal/query"
)

// TodoRepository wraps DB access for todos. Every read and write carries the
// owner predicate; there is no unscoped variant.
type TodoRepository struct {
	DB *sql.DB
}

// TodoPatch applies key-presence update semantics: nil means the client did
// not send the field, so the stored value stays.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority"`
}

// List runs the feature-built query and hydrates only the projected columns.
func (r TodoRepository) List(ctx context.Context, spec query.Spec) ([]models.Todo, error) {
	where, args := spec.WhereSQL()
	cols := spec.Columns()

	q := `SELECT ` + strings.Join(selectExprs(cols), ", ") +
		` FROM todos WHERE ` + where +
		` ORDER BY ` + spec.OrderSQL() +
		` LIMIT ? OFFSET ?`
	args = append(args, spec.Limit, spec.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(scanTargets(&t, cols)...); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Count runs the same predicate set without pagination.
func (r TodoRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	where, args := spec.WhereSQL()
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE `+where, args...).Scan(&n)
	return n, err
}

func (r TodoRepository) Create(ctx context.Context, t models.Todo) (models.Todo, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO todos (title, description, completed, priority, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		t.Title, t.Description, t.Completed, t.Priority, t.OwnerID)
	if err != nil {
		return models.Todo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Todo{}, err
	}
	return r.GetByID(ctx, id, t.OwnerID)
}

// GetByID loads one todo scoped to its owner. A miss and a non-owner hit are
// indistinguishable on purpose.
func (r TodoRepository) GetByID(ctx context.Context, id, ownerID int64) (models.Todo, error) {
	var t models.Todo
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description,''), completed, priority, owner_id, created_at, updated_at
		FROM todos
		WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, domain.NotFoundError{Resource: "todo", Err: err}
		}
		return models.Todo{}, err
	}
	return t, nil
}

// Update applies the patch to an owned todo and returns the fresh row.
func (r TodoRepository) Update(ctx context.Context, id, ownerID int64, patch TodoPatch) (models.Todo, error) {
	if _, err := r.GetByID(ctx, id, ownerID); err != nil {
		return models.Todo{}, err
	}

	sets := []string{}
	args := []any{}
	if patch.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *patch.Description)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed=?")
		args = append(args, *patch.Completed)
	}
	if patch.Priority != nil {
		sets = append(sets, "priority=?")
		args = append(args, *patch.Priority)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at=NOW()")
		args = append(args, id, ownerID)
		q := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND owner_id = ?`
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			return models.Todo{}, err
		}
	}
	return r.GetByID(ctx, id, ownerID)
}

// Delete removes an owned todo. Deleting an already-deleted (or someone
// else's) todo yields the same NotFoundError every time.
func (r TodoRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "todo"}
	}
	return nil
}

// ListByOwner loads every todo for one owner, newest first; used by the PDF
// export which ignores client query features.
func (r TodoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	spec, err := query.Build(nil, ownerID)
	if err != nil {
		return nil, err
	}
	spec.Limit = query.MaxLimit
	return r.List(ctx, spec)
}

func selectExprs(cols []string) []string {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		if c == "description" {
			exprs[i] = "COALESCE(description,'')"
			continue
		}
		exprs[i] = c
	}
	return exprs
}

func scanTargets(t *models.Todo, cols []string) []any {
	targets := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case "id":
			targets[i] = &t.ID
		case "title":
			targets[i] = &t.Title
		case "description":
			targets[i] = &t.Description
		case "completed":
			targets[i] = &t.Completed
		case "priority":
			targets[i] = &t.Priority
		case "created_at":
			targets[i] = &t.CreatedAt
		case "updated_at":
			targets[i] = &t.UpdatedAt
		default:
			var discard sql.RawBytes
			targets[i] = &discard
		}
	}
	return targets
}
