// internal/repository/store.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
)

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Tasks *TaskRepository
	Tags  *TagRepository
}

func newRepositories(q sqlx.ExtContext) Repositories {
	return Repositories{
		Tasks: &TaskRepository{q: q, dialect: q.DriverName()},
		Tags:  &TagRepository{q: q, dialect: q.DriverName()},
	}
}

// Store is the transactional entry point of the persistence layer.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn inside a read-write transaction. Every change made through
// the repositories handed to fn commits together, or none does.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return s.run(ctx, nil, fn)
}

// WithReadOnlyTx runs fn inside a read-only transaction.
func (s *Store) WithReadOnlyTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, r Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, opts)
	if err != nil {
		return apperrors.NewDatabaseError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewDatabaseError("commit transaction", err)
	}
	return nil
}

// Helper function for transaction rollback
func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// isUniqueViolation recognises unique constraint failures of both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// affectedOrNotFound turns a zero-row write into a not found error.
func affectedOrNotFound(result sql.Result, resource string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(resource, id)
	}
	return nil
}
