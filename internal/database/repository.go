package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured is returned when a Repository has no connection pool.
var ErrNotConfigured = errors.New("database not configured")

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository reads and writes price comparator data through a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps pool. A nil pool yields a repository whose every
// method returns ErrNotConfigured.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) getPool() (*pgxpool.Pool, error) {
	if r == nil || r.pool == nil {
		return nil, ErrNotConfigured
	}
	return r.pool, nil
}
