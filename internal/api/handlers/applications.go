package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eventforge/server/internal/api/problem"
	"github.com/eventforge/server/internal/domain/applications"
	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/ids"
	"github.com/eventforge/server/internal/domain/users"
	"github.com/eventforge/server/internal/metrics"
)

// ApplicationService defines the application workflow operations.
type ApplicationService interface {
	Apply(ctx context.Context, eventID string, callerUsername string) (*applications.Application, error)
	ListMine(ctx context.Context, callerUsername string) ([]applications.Application, error)
	ListFiltered(ctx context.Context, eventID string, status string) ([]applications.Application, error)
	Approve(ctx context.Context, id string) (*applications.StatusResult, error)
	Reject(ctx context.Context, id string) (*applications.StatusResult, error)
}

type ApplicationsHandler struct {
	service ApplicationService
	env     string
}

func NewApplicationsHandler(service ApplicationService, env string) *ApplicationsHandler {
	return &ApplicationsHandler{service: service, env: env}
}

type ApplicationResponse struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	Username        string    `json:"username"`
	UserEmail       string    `json:"user_email"`
	ApplicationDate time.Time `json:"application_date"`
	Status          string    `json:"status"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func toApplicationResponse(a *applications.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		EventID:         a.EventID,
		EventTitle:      a.EventTitle,
		Username:        a.Username,
		UserEmail:       a.UserEmail,
		ApplicationDate: a.ApplicationDate,
		Status:          string(a.Status),
	}
}

// Apply handles POST /api/v1/applications/apply/{eventId}.
func (h *ApplicationsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if err := ids.ValidateULID(eventID); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event ID", err, h.env)
		return
	}

	app, err := h.service.Apply(r.Context(), eventID, caller(r))
	if err != nil {
		h.mapApplicationError(w, r, err)
		return
	}

	metrics.ApplicationsSubmitted.Inc()
	writeJSON(w, r, http.StatusCreated, toApplicationResponse(app))
}

// ListMine handles GET /api/v1/applications/my-applications.
func (h *ApplicationsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMine(r.Context(), caller(r))
	if err != nil {
		h.mapApplicationError(w, r, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toApplicationResponse(&list[i]))
	}
	writeJSON(w, r, http.StatusOK, responses)
}

// List handles GET /api/v1/applications with optional event and status
// query filters.
func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	list, err := h.service.ListFiltered(r.Context(), query.Get("event"), query.Get("status"))
	if err != nil {
		h.mapApplicationError(w, r, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toApplicationResponse(&list[i]))
	}
	writeJSON(w, r, http.StatusOK, responses)
}

// Approve handles PUT /api/v1/applications/{id}/approve.
func (h *ApplicationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid application ID", err, h.env)
		return
	}

	result, err := h.service.Approve(r.Context(), id)
	if err != nil {
		h.mapApplicationError(w, r, err)
		return
	}

	metrics.ApplicationsReviewed.WithLabelValues("approved").Inc()
	writeJSON(w, r, http.StatusOK, StatusResponse{Message: result.Message, Status: string(result.Status)})
}

// Reject handles PUT /api/v1/applications/{id}/reject.
func (h *ApplicationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid application ID", err, h.env)
		return
	}

	result, err := h.service.Reject(r.Context(), id)
	if err != nil {
		h.mapApplicationError(w, r, err)
		return
	}

	metrics.ApplicationsReviewed.WithLabelValues("rejected").Inc()
	writeJSON(w, r, http.StatusOK, StatusResponse{Message: result.Message, Status: string(result.Status)})
}

func (h *ApplicationsHandler) mapApplicationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, applications.ErrInvalidInput):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.env)
	case errors.Is(err, applications.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Application not found", err, h.env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.env)
	case errors.Is(err, applications.ErrAlreadyApplied):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Already applied to this event", err, h.env)
	case errors.Is(err, applications.ErrEventExpired):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Event is no longer accepting applications", err, h.env)
	case errors.Is(err, applications.ErrAlreadyProcessed):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Application has already been processed", err, h.env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, h.env)
	}
}
