package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"todoapi/internal/domain"
	"todoapi/internal/domain/models"
)

// UserRepository wraps DB access for the users table. Reads exclude the
// password hash unless the call explicitly needs it for a login check.
type UserRepository struct {
	DB *sql.DB
}

// GetByID resolves a token subject to a live user. The password hash is not
// selected.
func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(photo,''), created_at, updated_at
		FROM users
		WHERE id = ?`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail loads a user including the stored password hash; used only by
// the login path.
func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(photo,''), password_hash, created_at, updated_at
		FROM users
		WHERE email = ?`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user. A duplicate email surfaces as a ConflictError
// via the unique index rather than a racy pre-check.
func (r UserRepository) Create(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())`, name, email, passwordHash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return models.User{}, domain.ConflictError{Field: "email", Msg: "email is already registered", Err: err}
		}
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, id)
}
