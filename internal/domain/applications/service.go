package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/ids"
	"github.com/eventforge/server/internal/domain/users"
)

var ErrInvalidInput = errors.New("invalid input")

// Service implements the application workflow: users apply to active events,
// admins review the queue and approve or reject pending entries.
type Service struct {
	repo   Repository
	events events.Repository
	users  users.Repository
	tx     TxRunner
	logger zerolog.Logger
}

func NewService(repo Repository, eventRepo events.Repository, userRepo users.Repository, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventRepo,
		users:  userRepo,
		tx:     tx,
		logger: logger.With().Str("component", "applications").Logger(),
	}
}

// StatusResult reports the outcome of a review decision.
type StatusResult struct {
	Message string
	Status  Status
}

// Apply creates a PENDING application for the caller on the given event. The
// event must exist and still be active; a user can hold at most one
// application per event.
func (s *Service) Apply(ctx context.Context, eventID string, callerUsername string) (*Application, error) {
	user, err := s.users.GetByUsername(ctx, callerUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve applicant: %w", err)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !events.IsActive(event, time.Now()) {
		return nil, ErrEventExpired
	}

	app, err := s.repo.Create(ctx, CreateParams{
		ID:      ids.NewULID(),
		EventID: event.ID,
		UserID:  user.ID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("application_id", app.ID).
		Str("event_id", event.ID).
		Str("username", user.Username).
		Msg("application submitted")

	return app, nil
}

// ListMine returns the caller's applications, newest first.
func (s *Service) ListMine(ctx context.Context, callerUsername string) ([]Application, error) {
	user, err := s.users.GetByUsername(ctx, callerUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve applicant: %w", err)
	}
	return s.repo.ListByUser(ctx, user.ID)
}

// ListFiltered returns applications, optionally narrowed by event and status.
// When an event filter is given the event must exist, so an unknown event id
// yields not-found rather than an empty list.
func (s *Service) ListFiltered(ctx context.Context, eventID string, status string) ([]Application, error) {
	filter := Filter{}

	if eventID != "" {
		if _, err := s.events.GetByID(ctx, eventID); err != nil {
			return nil, err
		}
		filter.EventID = eventID
	}

	if status != "" {
		st := Status(status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		filter.Status = st
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) GetApplication(ctx context.Context, id string) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id string) (*StatusResult, error) {
	if err := s.transition(ctx, id, StatusApproved); err != nil {
		return nil, err
	}
	return &StatusResult{Message: "Application approved successfully", Status: StatusApproved}, nil
}

func (s *Service) Reject(ctx context.Context, id string) (*StatusResult, error) {
	if err := s.transition(ctx, id, StatusRejected); err != nil {
		return nil, err
	}
	return &StatusResult{Message: "Application rejected successfully", Status: StatusRejected}, nil
}

// transition reads the current status and applies the decision inside one
// transaction, so two concurrent reviews cannot both pass the PENDING check.
func (s *Service) transition(ctx context.Context, id string, target Status) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		app, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if app.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		_, err = repo.UpdateStatus(ctx, id, target)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("application_id", id).
		Str("status", string(target)).
		Msg("application reviewed")

	return nil
}
