package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reviewboard/internal/data/entity"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// sqliteReviewRepository stores created_at as unix microseconds so range
// comparisons are numeric.
type sqliteReviewRepository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteReviewRepository(db *sql.DB, log *zap.Logger) ReviewRepository {
	return &sqliteReviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review"), zap.String("driver", "sqlite")),
	}
}

func (r *sqliteReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (author, product, rating, content, ownership_token_hash, dedupe_bucket, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		review.Author,
		review.Product,
		review.Rating,
		review.Content,
		review.OwnershipTokenHash,
		review.DedupeBucket,
		review.CreatedAt.UnixMicro(),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		r.log.Error("Failed to create review", zap.Error(err), zap.String("product", review.Product))
		return fmt.Errorf("create review for product %q: %w", review.Product, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted review id: %w", err)
	}
	review.ID = id

	return nil
}

func (r *sqliteReviewRepository) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`

	review, err := scanSQLiteReview(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("find review by ID %d: %w", id, err)
	}

	return review, nil
}

func (r *sqliteReviewRepository) FindOwnershipDigest(ctx context.Context, id int64) ([]byte, error) {
	var digest []byte
	err := r.db.QueryRowContext(ctx, `SELECT ownership_token_hash FROM reviews WHERE id = ?`, id).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ownership digest", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("find ownership digest for review %d: %w", id, err)
	}

	return digest, nil
}

func (r *sqliteReviewRepository) FindRecentDuplicate(ctx context.Context, author, product, content string, from, to time.Time) (*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author = ? AND product = ? AND content = ?
		  AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	review, err := scanSQLiteReview(r.db.QueryRowContext(ctx, query,
		author, product, content, from.UnixMicro(), to.UnixMicro()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find recent duplicate", zap.Error(err), zap.String("product", product))
		return nil, fmt.Errorf("find recent duplicate for product %q: %w", product, err)
	}

	return review, nil
}

func (r *sqliteReviewRepository) FindByDedupeKey(ctx context.Context, author, product, content string, bucket int64) (*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author = ? AND product = ? AND content = ? AND dedupe_bucket = ?
		LIMIT 1
	`

	review, err := scanSQLiteReview(r.db.QueryRowContext(ctx, query, author, product, content, bucket))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by dedupe key", zap.Error(err), zap.Int64("bucket", bucket))
		return nil, fmt.Errorf("find review by dedupe key: %w", err)
	}

	return review, nil
}

func (r *sqliteReviewRepository) List(ctx context.Context, params ListParams) ([]*entity.Review, int64, error) {
	where, args := buildListWhere(params, 1, sqliteDialect)

	query := fmt.Sprintf(`SELECT %s FROM reviews %s %s LIMIT ? OFFSET ?`,
		reviewColumns, where, buildOrderBy(params.Sort))

	rows, err := r.db.QueryContext(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		r.log.Error("Failed to list reviews",
			zap.Error(err),
			zap.Int("limit", params.Limit),
			zap.Int("offset", params.Offset),
		)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*entity.Review, 0, params.Limit)
	for rows.Next() {
		review, err := scanSQLiteReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	countWhere, countArgs := buildListWhere(params, 1, sqliteDialect)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews `+countWhere, countArgs...).Scan(&total); err != nil {
		r.log.Error("Failed to count reviews", zap.Error(err))
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *sqliteReviewRepository) Update(ctx context.Context, id int64, patch entity.ReviewPatch) (*entity.Review, error) {
	query := `
		UPDATE reviews
		SET author  = COALESCE(?, author),
		    product = COALESCE(?, product),
		    rating  = COALESCE(?, rating),
		    content = COALESCE(?, content)
		WHERE id = ?
		RETURNING ` + reviewColumns

	review, err := scanSQLiteReview(r.db.QueryRowContext(ctx, query,
		patch.Author, patch.Product, patch.Rating, patch.Content, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isSQLiteUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		r.log.Error("Failed to update review", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}

	return review, nil
}

func (r *sqliteReviewRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		r.log.Error("Failed to delete review", zap.Error(err), zap.Int64("review_id", id))
		return fmt.Errorf("delete review %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	r.log.Info("Review deleted", zap.Int64("review_id", id))
	return nil
}

func (r *sqliteReviewRepository) GetProductReviewStats(ctx context.Context, product string) (float64, int64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0.0), COUNT(*)
		FROM reviews
		WHERE product = ?
	`

	var avgRating float64
	var reviewCount int64
	if err := r.db.QueryRowContext(ctx, query, product).Scan(&avgRating, &reviewCount); err != nil {
		r.log.Error("Failed to get product review stats", zap.Error(err), zap.String("product", product))
		return 0, 0, fmt.Errorf("get review stats for %q: %w", product, err)
	}

	return avgRating, reviewCount, nil
}

// ==================== HELPERS ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReview(row rowScanner) (*entity.Review, error) {
	var review entity.Review
	var createdAt int64
	err := row.Scan(
		&review.ID,
		&review.Author,
		&review.Product,
		&review.Rating,
		&review.Content,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	review.CreatedAt = time.UnixMicro(createdAt).UTC()
	return &review, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
