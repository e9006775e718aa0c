package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventforge/server/internal/domain/ids"
	"github.com/eventforge/server/internal/domain/users"
)

var ErrInvalidInput = errors.New("invalid input")

// Service implements event CRUD with organizer-ownership enforcement. The
// caller identity is always passed in explicitly; the service resolves it to
// a user record through the shared user repository.
type Service struct {
	repo      Repository
	users     users.Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, userRepo users.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     userRepo,
		logger:    logger.With().Str("component", "events").Logger(),
		validator: validator.New(),
	}
}

type CreateEventParams struct {
	Title       string    `validate:"required"`
	Description string    `validate:"omitempty"`
	ExpiryDate  time.Time `validate:"required"`
}

// UpdateEventParams carries a partial update. Empty strings leave the field
// untouched; ExpiryDate is applied whenever non-nil.
type UpdateEventParams struct {
	Title       string
	Description string
	ExpiryDate  *time.Time
}

// IsActive reports whether the event's expiry date is on or after the given
// day (dates compared at day granularity).
func IsActive(event *Event, today time.Time) bool {
	return !event.ExpiryDate.Before(Day(today))
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *Service) CreateEvent(ctx context.Context, params CreateEventParams, callerUsername string) (*Event, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	organizer, err := s.users.GetByUsername(ctx, callerUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve organizer: %w", err)
	}

	event, err := s.repo.Create(ctx, CreateParams{
		ID:          ids.NewULID(),
		Title:       params.Title,
		Description: params.Description,
		UploadDate:  Day(time.Now()),
		ExpiryDate:  Day(params.ExpiryDate),
		OrganizerID: organizer.ID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Str("organizer", organizer.Username).
		Msg("event created")

	return event, nil
}

func (s *Service) ListAllEvents(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListActiveEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListActive(ctx, Day(time.Now()))
}

func (s *Service) ListEventsByOrganizer(ctx context.Context, callerUsername string) ([]Event, error) {
	organizer, err := s.users.GetByUsername(ctx, callerUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve organizer: %w", err)
	}
	return s.repo.ListByOrganizer(ctx, organizer.ID)
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEvent(ctx context.Context, id string, params UpdateEventParams, callerUsername string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.OrganizerName != callerUsername {
		return nil, ErrNotOrganizer
	}

	title := event.Title
	if params.Title != "" {
		title = params.Title
	}
	description := event.Description
	if params.Description != "" {
		description = params.Description
	}
	expiry := event.ExpiryDate
	if params.ExpiryDate != nil {
		expiry = Day(*params.ExpiryDate)
	}

	updated, err := s.repo.Update(ctx, UpdateParams{
		ID:          id,
		Title:       title,
		Description: description,
		ExpiryDate:  expiry,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", id).Msg("event updated")
	return updated, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string, callerUsername string) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if event.OrganizerName != callerUsername {
		return ErrNotOrganizer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}
