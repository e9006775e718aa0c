package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("event not found")

	// ErrNotOrganizer is returned when a caller other than the event's
	// organizer attempts to update or delete it.
	ErrNotOrganizer = errors.New("only the organizer can modify this event")

	// ErrReferenced is returned when deleting an event that still has
	// applications attached.
	ErrReferenced = errors.New("event still has applications")
)

// Event is an organizer-owned announcement with a validity window. An event is
// active while ExpiryDate is today or later. OrganizerName is denormalized
// from the users table for response building.
type Event struct {
	ID            string
	Title         string
	Description   string
	UploadDate    time.Time
	ExpiryDate    time.Time
	OrganizerID   string
	OrganizerName string
}

type CreateParams struct {
	ID          string
	Title       string
	Description string
	UploadDate  time.Time
	ExpiryDate  time.Time
	OrganizerID string
}

type UpdateParams struct {
	ID          string
	Title       string
	Description string
	ExpiryDate  time.Time
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns every event, most recently uploaded first.
	List(ctx context.Context) ([]Event, error)
	// ListActive returns events with expiry_date >= today, ordered by
	// upload_date descending with id as tiebreak.
	ListActive(ctx context.Context, today time.Time) ([]Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]Event, error)
	Update(ctx context.Context, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id string) error
}
