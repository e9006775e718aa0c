package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventforge/server/internal/domain/applications"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ applications.Repository = (*ApplicationRepository)(nil)

const applicationSelect = `
SELECT a.id, a.event_id, e.title, a.user_id, u.username, u.email, a.application_date, a.status
  FROM event_applications a
  JOIN events e ON e.id = a.event_id
  JOIN users u ON u.id = a.user_id`

func (r *ApplicationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *ApplicationRepository) Create(ctx context.Context, params applications.CreateParams) (*applications.Application, error) {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO event_applications (id, event_id, user_id, status)
VALUES ($1, $2, $3, $4)`,
		params.ID, params.EventID, params.UserID, applications.StatusPending)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, applications.ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return r.GetByID(ctx, params.ID)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*applications.Application, error) {
	row := r.queryer().QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, applications.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]applications.Application, error) {
	rows, err := r.queryer().Query(ctx, applicationSelect+`
 WHERE a.user_id = $1
 ORDER BY a.application_date DESC, a.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications by user: %w", err)
	}
	return collectApplications(rows)
}

func (r *ApplicationRepository) List(ctx context.Context, filter applications.Filter) ([]applications.Application, error) {
	query := applicationSelect + ` WHERE TRUE`
	args := []any{}

	if filter.EventID != "" {
		args = append(args, filter.EventID)
		query += fmt.Sprintf(" AND a.event_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	query += ` ORDER BY a.application_date DESC, a.id DESC`

	rows, err := r.queryer().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return collectApplications(rows)
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status applications.Status) (*applications.Application, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE event_applications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, applications.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func scanApplication(row pgx.Row) (*applications.Application, error) {
	var a applications.Application
	if err := row.Scan(&a.ID, &a.EventID, &a.EventTitle, &a.UserID, &a.Username, &a.UserEmail, &a.ApplicationDate, &a.Status); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]applications.Application, error) {
	defer rows.Close()

	var result []applications.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}
