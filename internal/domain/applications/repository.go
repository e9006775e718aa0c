package applications

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("application not found")

	// ErrAlreadyApplied is returned when a user applies twice to the same
	// event. Backed by a unique index on (event_id, user_id).
	ErrAlreadyApplied = errors.New("already applied to this event")

	// ErrEventExpired is returned when applying to an event whose expiry
	// date has passed.
	ErrEventExpired = errors.New("event is no longer accepting applications")

	// ErrAlreadyProcessed is returned when approving or rejecting an
	// application that is not pending.
	ErrAlreadyProcessed = errors.New("application has already been processed")
)

// Status is the review state of an application. An application starts PENDING
// and moves exactly once to APPROVED or REJECTED.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Application records one user's interest in one event. EventTitle, Username
// and UserEmail are denormalized joins for response building.
type Application struct {
	ID              string
	EventID         string
	EventTitle      string
	UserID          string
	Username        string
	UserEmail       string
	ApplicationDate time.Time
	Status          Status
}

type CreateParams struct {
	ID      string
	EventID string
	UserID  string
}

// Filter narrows List. Zero-value fields are ignored.
type Filter struct {
	EventID string
	Status  Status
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Application, error)
	GetByID(ctx context.Context, id string) (*Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	// List returns applications matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Application, error)
}

// TxRunner runs fn against a Repository bound to a single database
// transaction. fn returning an error rolls the transaction back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
