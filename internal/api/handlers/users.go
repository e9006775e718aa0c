package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventforge/server/internal/api/problem"
	"github.com/eventforge/server/internal/domain/users"
)

// UserService defines the admin user management operations.
type UserService interface {
	CreateUser(ctx context.Context, params users.CreateUserParams) (*users.User, error)
	ListUsers(ctx context.Context) ([]users.User, error)
	GetUser(ctx context.Context, id string) (*users.User, error)
	UpdateUser(ctx context.Context, id string, params users.UpdateUserParams) (*users.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UsersHandler struct {
	service UserService
	env     string
}

func NewUsersHandler(service UserService, env string) *UsersHandler {
	return &UsersHandler{service: service, env: env}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserResponse never includes the password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Create handles POST /api/v1/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	user, err := h.service.CreateUser(r.Context(), users.CreateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.mapUserError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toUserResponse(user))
}

// List handles GET /api/v1/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.mapUserError(w, r, err)
		return
	}

	responses := make([]UserResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toUserResponse(&list[i]))
	}
	writeJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /api/v1/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapUserError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(user))
}

// Update handles PUT /api/v1/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), r.PathValue("id"), users.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		h.mapUserError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/v1/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		h.mapUserError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

func (h *UsersHandler) mapUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.env)
	case errors.Is(err, users.ErrUsernameTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Username already exists", err, h.env)
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already exists", err, h.env)
	case errors.Is(err, users.ErrReferenced):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "User still has events or applications", err, h.env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, h.env)
	}
}
