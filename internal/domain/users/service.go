package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventforge/server/internal/auth"
)

// ErrInvalidInput wraps parameter validation failures.
var ErrInvalidInput = errors.New("invalid input")

// Service handles the admin-only user management surface. Passwords and roles
// are set at creation time and are not mutable through UpdateUser.
type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "users").Logger(),
		validator: validator.New(),
	}
}

type CreateUserParams struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"omitempty,oneof=user admin"`
}

type UpdateUserParams struct {
	Username string `validate:"omitempty"`
	Email    string `validate:"omitempty,email"`
}

func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if params.Role == "" {
		params.Role = string(auth.RoleUser)
	}

	if err := s.checkUsernameFree(ctx, params.Username, ""); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, params.Email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         string(auth.NormalizeRole(params.Role)),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("user created")

	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies a partial update: empty fields are left untouched, and
// each supplied field is re-checked for uniqueness against other users.
func (s *Service) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username := existing.Username
	if params.Username != "" && params.Username != existing.Username {
		if err := s.checkUsernameFree(ctx, params.Username, id); err != nil {
			return nil, err
		}
		username = params.Username
	}

	email := existing.Email
	if params.Email != "" && params.Email != existing.Email {
		if err := s.checkEmailFree(ctx, params.Email, id); err != nil {
			return nil, err
		}
		email = params.Email
	}

	updated, err := s.repo.Update(ctx, UpdateParams{ID: id, Username: username, Email: email})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *Service) checkUsernameFree(ctx context.Context, username, selfID string) error {
	other, err := s.repo.GetByUsername(ctx, username)
	if err == nil && other.ID != selfID {
		return ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func (s *Service) checkEmailFree(ctx context.Context, email, selfID string) error {
	other, err := s.repo.GetByEmail(ctx, email)
	if err == nil && other.ID != selfID {
		return ErrEmailTaken
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}
