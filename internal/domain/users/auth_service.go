package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventforge/server/internal/auth"
)

// ErrInvalidCredentials covers both unknown-username and wrong-password login
// failures; the two cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService handles self-service registration and login. Registration always
// produces a regular user account; admin accounts come from the bootstrap
// routine or from admin user creation.
type AuthService struct {
	repo      Repository
	tokens    *auth.JWTManager
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewAuthService(repo Repository, tokens *auth.JWTManager, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		logger:    logger.With().Str("component", "auth").Logger(),
		validator: validator.New(),
	}
}

type RegisterParams struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type LoginParams struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResult is the profile echo plus the issued token.
type LoginResult struct {
	User  *User
	Token string
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         string(auth.RoleUser),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.repo.GetByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Username, auth.NormalizeRole(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Msg("login successful")
	return &LoginResult{User: user, Token: token}, nil
}
