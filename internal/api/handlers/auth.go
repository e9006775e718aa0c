package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventforge/server/internal/api/problem"
	"github.com/eventforge/server/internal/domain/users"
)

// AuthService defines the self-service registration and login operations.
type AuthService interface {
	Register(ctx context.Context, params users.RegisterParams) (*users.User, error)
	Login(ctx context.Context, params users.LoginParams) (*users.LoginResult, error)
}

type AuthHandler struct {
	service AuthService
	env     string
}

func NewAuthHandler(service AuthService, env string) *AuthHandler {
	return &AuthHandler{service: service, env: env}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	user, err := h.service.Register(r.Context(), users.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.mapAuthError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, RegisterResponse{
		Message:  "User registered successfully",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	result, err := h.service.Login(r.Context(), users.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.mapAuthError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, LoginResponse{
		Message:  "Login successful",
		Token:    result.Token,
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		Role:     result.User.Role,
	})
}

func (h *AuthHandler) mapAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.env)
	case errors.Is(err, users.ErrUsernameTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Username already exists", err, h.env)
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already exists", err, h.env)
	case errors.Is(err, users.ErrInvalidCredentials):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid username or password", err, h.env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, h.env)
	}
}
