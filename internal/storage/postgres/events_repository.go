package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventforge/server/internal/domain/events"
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ events.Repository = (*EventRepository)(nil)

// Every read joins users so OrganizerName comes back alongside the row.
const eventSelect = `
SELECT e.id, e.title, e.description, e.upload_date, e.expiry_date, e.organizer_id, u.username
  FROM events e
  JOIN users u ON u.id = e.organizer_id`

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (id, title, description, upload_date, expiry_date, organizer_id)
VALUES ($1, $2, $3, $4, $5, $6)`,
		params.ID, params.Title, params.Description, params.UploadDate, params.ExpiryDate, params.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return r.GetByID(ctx, params.ID)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, eventSelect+`
 ORDER BY e.upload_date DESC, e.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListActive(ctx context.Context, today time.Time) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, eventSelect+`
 WHERE e.expiry_date >= $1
 ORDER BY e.upload_date DESC, e.id DESC`, today)
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, eventSelect+`
 WHERE e.organizer_id = $1
 ORDER BY e.upload_date DESC, e.id DESC`, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, params events.UpdateParams) (*events.Event, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events SET title = $2, description = $3, expiry_date = $4
 WHERE id = $1`,
		params.ID, params.Title, params.Description, params.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return r.GetByID(ctx, params.ID)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return events.ErrReferenced
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.UploadDate, &e.ExpiryDate, &e.OrganizerID, &e.OrganizerName); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}
