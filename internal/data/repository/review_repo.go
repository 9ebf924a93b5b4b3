package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewboard/internal/data/entity"
	"reviewboard/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review"), zap.String("driver", "postgres")),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (author, product, rating, content, ownership_token_hash, dedupe_bucket, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		review.Author,
		review.Product,
		review.Rating,
		review.Content,
		review.OwnershipTokenHash,
		review.DedupeBucket,
		review.CreatedAt,
	).Scan(&review.ID)

	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("product", review.Product),
		)
		return fmt.Errorf("create review for product %q: %w", review.Product, err)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("find review by ID %d: %w", id, err)
	}

	return review, nil
}

func (r *reviewRepository) FindOwnershipDigest(ctx context.Context, id int64) ([]byte, error) {
	query := `SELECT ownership_token_hash FROM reviews WHERE id = $1`

	var digest []byte
	err := r.db.QueryRow(ctx, query, id).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ownership digest", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("find ownership digest for review %d: %w", id, err)
	}

	return digest, nil
}

func (r *reviewRepository) FindRecentDuplicate(ctx context.Context, author, product, content string, from, to time.Time) (*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author = $1 AND product = $2 AND content = $3
		  AND created_at >= $4 AND created_at <= $5
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	review, err := scanReview(r.db.QueryRow(ctx, query, author, product, content, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find recent duplicate", zap.Error(err), zap.String("product", product))
		return nil, fmt.Errorf("find recent duplicate for product %q: %w", product, err)
	}

	return review, nil
}

func (r *reviewRepository) FindByDedupeKey(ctx context.Context, author, product, content string, bucket int64) (*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author = $1 AND product = $2 AND content = $3 AND dedupe_bucket = $4
		LIMIT 1
	`

	review, err := scanReview(r.db.QueryRow(ctx, query, author, product, content, bucket))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by dedupe key", zap.Error(err), zap.Int64("bucket", bucket))
		return nil, fmt.Errorf("find review by dedupe key: %w", err)
	}

	return review, nil
}

func (r *reviewRepository) List(ctx context.Context, params ListParams) ([]*entity.Review, int64, error) {
	where, args := buildListWhere(params, 1, postgresDialect)
	argNum := len(args) + 1

	query := fmt.Sprintf(`SELECT %s FROM reviews %s %s LIMIT $%d OFFSET $%d`,
		reviewColumns, where, buildOrderBy(params.Sort), argNum, argNum+1)

	rows, err := r.db.Query(ctx, query, append(args, params.Limit, params.Offset)...)
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
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	countWhere, countArgs := buildListWhere(params, 1, postgresDialect)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews `+countWhere, countArgs...).Scan(&total); err != nil {
		r.log.Error("Failed to count reviews", zap.Error(err))
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *reviewRepository) Update(ctx context.Context, id int64, patch entity.ReviewPatch) (*entity.Review, error) {
	query := `
		UPDATE reviews
		SET author  = COALESCE($2, author),
		    product = COALESCE($3, product),
		    rating  = COALESCE($4, rating),
		    content = COALESCE($5, content)
		WHERE id = $1
		RETURNING ` + reviewColumns

	review, err := scanReview(r.db.QueryRow(ctx, query, id, patch.Author, patch.Product, patch.Rating, patch.Content))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		r.log.Error("Failed to update review", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}

	return review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review", zap.Error(err), zap.Int64("review_id", id))
		return fmt.Errorf("delete review %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Review deleted", zap.Int64("review_id", id))
	return nil
}

func (r *reviewRepository) GetProductReviewStats(ctx context.Context, product string) (float64, int64, error) {
	query := `
		SELECT
			COALESCE(AVG(rating), 0)::float8 AS avg_rating,
			COUNT(*) AS review_count
		FROM reviews
		WHERE product = $1
	`

	var avgRating float64
	var reviewCount int64
	if err := r.db.QueryRow(ctx, query, product).Scan(&avgRating, &reviewCount); err != nil {
		r.log.Error("Failed to get product review stats", zap.Error(err), zap.String("product", product))
		return 0, 0, fmt.Errorf("get review stats for %q: %w", product, err)
	}

	return avgRating, reviewCount, nil
}

// ==================== HELPERS ====================

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.Author,
		&review.Product,
		&review.Rating,
		&review.Content,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	review.CreatedAt = review.CreatedAt.UTC()
	return &review, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
