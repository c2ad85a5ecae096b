// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/jmoiron/sqlx"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DBTX is the query surface shared by [sqlx.DB] and [sqlx.Tx].
type DBTX interface {
	sqlx.ExtContext
}

// Store bundles the repositories over one database handle.
//
// Construct it once at startup with [NewStore] and pass it to whatever needs storage.
type Store struct {
	db *sqlx.DB
	tx *sqlx.Tx

	Users      *UserRepository
	Movies     *MovieRepository
	UserMovies *UserMovieRepository
}

// NewStore creates a [Store] whose repositories run directly against the connection pool.
func NewStore(db *sqlx.DB) *Store {
	return newStore(db, nil, db)
}

func newStore(db *sqlx.DB, tx *sqlx.Tx, q DBTX) *Store {
	return &Store{
		db:         db,
		tx:         tx,
		Users:      NewUserRepository(q),
		Movies:     NewMovieRepository(q),
		UserMovies: NewUserMovieRepository(q),
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// WithTx runs fn against a transaction-scoped [Store].
//
// The transaction commits when fn returns nil and rolls back otherwise. Calling WithTx on a store that is already
// transaction-scoped reuses the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getOne runs a single-row query into dest, translating [sql.ErrNoRows] into [shared.ErrNotFound].
func getOne(ctx context.Context, q DBTX, dest any, what string, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, shared.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", what, err)
	}
	return nil
}

// selectBuilt runs a squirrel SELECT into dest.
func selectBuilt(ctx context.Context, q DBTX, dest any, what string, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}

	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return fmt.Errorf("failed to query %s: %w", what, err)
	}
	return nil
}

// affectOne checks that a mutation touched a row, reporting [shared.ErrNotFound] otherwise.
func affectOne(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, shared.ErrNotFound)
	}
	return nil
}
