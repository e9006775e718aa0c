package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventforge/server/internal/domain/applications"
	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/users"
)

// Repository bundles the PostgreSQL-backed repositories behind one handle.
// When a transaction is active every accessor returns a tx-bound repository.
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	users        *UserRepository
	events       *EventRepository
	applications *ApplicationRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}

	return &Repository{
		pool:         pool,
		users:        &UserRepository{pool: pool},
		events:       &EventRepository{pool: pool},
		applications: &ApplicationRepository{pool: pool},
	}, nil
}

func (r *Repository) Users() users.Repository {
	if r.tx != nil {
		return &UserRepository{pool: r.pool, tx: r.tx}
	}
	return r.users
}

func (r *Repository) Events() events.Repository {
	if r.tx != nil {
		return &EventRepository{pool: r.pool, tx: r.tx}
	}
	return r.events
}

func (r *Repository) Applications() applications.Repository {
	if r.tx != nil {
		return &ApplicationRepository{pool: r.pool, tx: r.tx}
	}
	return r.applications
}

// WithTx executes fn within a database transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, *Repository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{
		pool:         r.pool,
		tx:           tx,
		users:        &UserRepository{pool: r.pool, tx: tx},
		events:       &EventRepository{pool: r.pool, tx: tx},
		applications: &ApplicationRepository{pool: r.pool, tx: tx},
	}

	if err := fn(ctx, txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ApplicationsTx exposes WithTx as the applications-domain transaction
// runner, handing fn a tx-bound applications repository.
type ApplicationsTx struct {
	repo *Repository
}

func NewApplicationsTx(repo *Repository) *ApplicationsTx {
	return &ApplicationsTx{repo: repo}
}

var _ applications.TxRunner = (*ApplicationsTx)(nil)

func (t *ApplicationsTx) InTx(ctx context.Context, fn func(context.Context, applications.Repository) error) error {
	return t.repo.WithTx(ctx, func(ctx context.Context, txRepo *Repository) error {
		return fn(ctx, txRepo.Applications())
	})
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
