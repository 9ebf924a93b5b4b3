package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reviewboard/internal/data/entity"
	"reviewboard/pkg/database"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("review not found")
	// ErrConflict is returned when the dedupe unique index rejects a write.
	ErrConflict = errors.New("review with the same author, product and content already exists in this window")
)

const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortRatingDesc = "rating_desc"
	SortRatingAsc  = "rating_asc"
)

// ListParams describes one page of the review listing.
type ListParams struct {
	Query  string
	Sort   string
	Limit  int
	Offset int
}

// ReviewRepository is the row-store capability over the reviews table.
// Find* methods return (nil, nil) when no row matches.
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id int64) (*entity.Review, error)
	FindOwnershipDigest(ctx context.Context, id int64) ([]byte, error)
	FindRecentDuplicate(ctx context.Context, author, product, content string, from, to time.Time) (*entity.Review, error)
	FindByDedupeKey(ctx context.Context, author, product, content string, bucket int64) (*entity.Review, error)
	List(ctx context.Context, params ListParams) ([]*entity.Review, int64, error)
	Update(ctx context.Context, id int64, patch entity.ReviewPatch) (*entity.Review, error)
	Delete(ctx context.Context, id int64) error

	// Business queries
	GetProductReviewStats(ctx context.Context, product string) (float64, int64, error) // rating, count
}

type Repository struct {
	Review ReviewRepository

	ping func(ctx context.Context) error
}

// NewRepository builds the PostgreSQL-backed repositories.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Review: NewReviewRepository(db, log),
		ping:   db.Ping,
	}
}

// NewSQLiteRepository builds the SQLite-backed repositories.
func NewSQLiteRepository(db *sql.DB, log *zap.Logger) *Repository {
	return &Repository{
		Review: NewSQLiteReviewRepository(db, log),
		ping:   db.PingContext,
	}
}

// Ping reports whether the backing store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r.ping == nil {
		return nil
	}
	return r.ping(ctx)
}
