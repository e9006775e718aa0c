package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventforge/server/internal/domain/users"
)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ users.Repository = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, role, created_at`

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns, params.Username, params.Email, params.PasswordHash, params.Role)

	user, err := scanUser(row)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, uniqueUserError(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, params users.UpdateParams) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE users SET username = $2, email = $3
 WHERE id = $1
RETURNING `+userColumns, params.ID, params.Username, params.Email)

	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, users.ErrNotFound
		}
		if pgErrCode(err) == pgUniqueViolation {
			return nil, uniqueUserError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return users.ErrReferenced
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueUserError maps a unique violation to the taken-field sentinel based on
// the violated index name.
func uniqueUserError(err error) error {
	switch pgConstraint(err) {
	case "users_email_key":
		return users.ErrEmailTaken
	default:
		return users.ErrUsernameTaken
	}
}
