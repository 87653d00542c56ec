// Package database holds the Postgres queries for shopping lists, companies,
// masquerade sessions and bulk-upload history. Query methods hang off Queries
// and accept any DBTX, so the same code runs on a pool or inside a
// transaction.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Store adds transactions on top of the query set.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// PoolStore is the pgxpool-backed Store.
type PoolStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore wraps a pool.
func NewStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{Queries: New(pool), pool: pool}
}

// ExecTx runs fn inside a transaction and commits if fn returns nil.
func (s *PoolStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ Store = (*PoolStore)(nil)
