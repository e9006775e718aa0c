package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")

	// ErrReferenced is returned when deleting a user that still organizes
	// events or holds applications. Deletion with live references is
	// forbidden rather than cascaded.
	ErrReferenced = errors.New("user is still referenced by events or applications")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type UpdateParams struct {
	ID       string
	Username string
	Email    string
}

// Repository persists user accounts. Implementations translate unique index
// violations on username/email into ErrUsernameTaken/ErrEmailTaken so the
// duplicate check holds even under concurrent writes.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, params UpdateParams) (*User, error)
	Delete(ctx context.Context, id string) error
}
