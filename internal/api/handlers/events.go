package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventforge/server/internal/api/middleware"
	"github.com/eventforge/server/internal/api/problem"
	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/ids"
	"github.com/eventforge/server/internal/domain/users"
)

const dateLayout = "2006-01-02"

// EventService defines the event CRUD operations.
type EventService interface {
	CreateEvent(ctx context.Context, params events.CreateEventParams, callerUsername string) (*events.Event, error)
	ListAllEvents(ctx context.Context) ([]events.Event, error)
	ListActiveEvents(ctx context.Context) ([]events.Event, error)
	ListEventsByOrganizer(ctx context.Context, callerUsername string) ([]events.Event, error)
	GetEvent(ctx context.Context, id string) (*events.Event, error)
	UpdateEvent(ctx context.Context, id string, params events.UpdateEventParams, callerUsername string) (*events.Event, error)
	DeleteEvent(ctx context.Context, id string, callerUsername string) error
}

type EventsHandler struct {
	service EventService
	env     string
}

func NewEventsHandler(service EventService, env string) *EventsHandler {
	return &EventsHandler{service: service, env: env}
}

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ExpiryDate  string `json:"expiry_date"`
}

type UpdateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ExpiryDate  string `json:"expiry_date"`
}

type EventResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	UploadDate    string `json:"upload_date"`
	ExpiryDate    string `json:"expiry_date"`
	OrganizerName string `json:"organizer"`
	Active        bool   `json:"active"`
}

func toEventResponse(e *events.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		UploadDate:    e.UploadDate.Format(dateLayout),
		ExpiryDate:    e.ExpiryDate.Format(dateLayout),
		OrganizerName: e.OrganizerName,
		Active:        events.IsActive(e, time.Now()),
	}
}

func toEventResponses(list []events.Event) []EventResponse {
	responses := make([]EventResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toEventResponse(&list[i]))
	}
	return responses
}

func caller(r *http.Request) string {
	if claims := middleware.Claims(r); claims != nil {
		return claims.Subject
	}
	return ""
}

// Create handles POST /api/v1/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid expiry date", err, h.env)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), events.CreateEventParams{
		Title:       req.Title,
		Description: req.Description,
		ExpiryDate:  expiry,
	}, caller(r))
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEventResponse(event))
}

// List handles GET /api/v1/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAllEvents(r.Context())
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponses(list))
}

// ListAvailable handles GET /api/v1/events/available.
func (h *EventsHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActiveEvents(r.Context())
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponses(list))
}

// ListMine handles GET /api/v1/events/mine.
func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListEventsByOrganizer(r.Context(), caller(r))
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponses(list))
}

// Get handles GET /api/v1/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event ID", err, h.env)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(event))
}

// Update handles PUT /api/v1/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event ID", err, h.env)
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.env)
		return
	}

	params := events.UpdateEventParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.ExpiryDate != "" {
		expiry, err := parseDate(req.ExpiryDate)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid expiry date", err, h.env)
			return
		}
		params.ExpiryDate = &expiry
	}

	event, err := h.service.UpdateEvent(r.Context(), id, params, caller(r))
	if err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(event))
}

// Delete handles DELETE /api/v1/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event ID", err, h.env)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id, caller(r)); err != nil {
		h.mapEventError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func (h *EventsHandler) mapEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrInvalidInput):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Organizer not found", err, h.env)
	case errors.Is(err, events.ErrNotOrganizer):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Only the organizer can modify this event", err, h.env)
	case errors.Is(err, events.ErrReferenced):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Event still has applications", err, h.env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, h.env)
	}
}
