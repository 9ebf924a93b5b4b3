package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reviewboard/internal/data/entity"
	"reviewboard/internal/data/repository"
	"reviewboard/internal/dedupe"
	"reviewboard/internal/dto/request"
	"reviewboard/internal/dto/response"
	"reviewboard/internal/ownership"
	"reviewboard/pkg/utils"

	"go.uber.org/zap"
)

const (
	defaultStoreTimeout = 5 * time.Second
	defaultPageLimit    = 20
	maxPageLimit        = 50
)

type ReviewService interface {
	// Public endpoints
	CreateReview(ctx context.Context, req *request.CreateReviewRequest) (*response.CreateReviewResponse, error)
	ListReviews(ctx context.Context, req *request.ListReviewsRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetReview(ctx context.Context, id int64) (*response.ReviewResponse, error)

	// Owner-only endpoints, token is the presented ownership token
	UpdateReview(ctx context.Context, id int64, token string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, id int64, token string) error

	// Stats
	GetProductReviewStats(ctx context.Context, product string) (*response.ProductReviewStats, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	guard    *dedupe.Guard
	issuer   ownership.Issuer
	verifier *ownership.Verifier
	now      func() time.Time
	config   utils.ReviewConfig
	log      *zap.Logger
}

func NewReviewService(repo repository.ReviewRepository, config utils.ReviewConfig, log *zap.Logger, opts ...Option) ReviewService {
	if config.StoreTimeout <= 0 {
		config.StoreTimeout = defaultStoreTimeout
	}
	if config.PageLimitMax <= 0 {
		config.PageLimitMax = maxPageLimit
	}
	if config.PageLimitDefault <= 0 || config.PageLimitDefault > config.PageLimitMax {
		config.PageLimitDefault = min(defaultPageLimit, config.PageLimitMax)
	}

	s := &reviewService{
		repo:   repo,
		issuer: ownership.NewIssuer(),
		now:    time.Now,
		config: config,
		log:    log.With(zap.String("service", "review")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.guard = dedupe.NewGuard(repo, config.DuplicateWindow, s.now)
	s.verifier = ownership.NewVerifier(repo)

	return s
}

func (s *reviewService) CreateReview(ctx context.Context, req *request.CreateReviewRequest) (*response.CreateReviewResponse, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	now := s.guard.Now()
	candidate := dedupe.Candidate{
		Author:  req.Author,
		Product: req.Product,
		Content: req.Content,
		Rating:  *req.Rating,
	}

	verdict, err := s.guard.ShouldAdmit(ctx, candidate, now)
	if err != nil {
		return nil, s.storeFailure("create review", err)
	}
	if !verdict.Admit {
		duplicatesAbsorbedTotal.WithLabelValues("guard").Inc()
		s.log.Info("Duplicate submission absorbed",
			zap.Int64("review_id", verdict.ExistingID),
			zap.String("stage", "guard"),
		)
		return &response.CreateReviewResponse{ID: verdict.ExistingID}, nil
	}

	token, err := s.issuer.Issue()
	if err != nil {
		s.log.Error("Failed to issue ownership token", zap.Error(err))
		return nil, fmt.Errorf("create review: %w", err)
	}

	review := &entity.Review{
		BaseSimple:         entity.BaseSimple{CreatedAt: now},
		Author:             req.Author,
		Product:            req.Product,
		Rating:             *req.Rating,
		Content:            req.Content,
		OwnershipTokenHash: token.Digest,
		DedupeBucket:       s.guard.Bucket(now),
	}

	err = s.repo.Create(ctx, review)
	if errors.Is(err, repository.ErrConflict) {
		return s.absorbConflict(ctx, review)
	}
	if err != nil {
		return nil, s.storeFailure("create review", err)
	}

	reviewsCreatedTotal.Inc()
	s.log.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.String("product", review.Product),
		zap.Int("rating", review.Rating),
	)

	return &response.CreateReviewResponse{
		ID:             review.ID,
		OwnershipToken: token.Plain,
	}, nil
}

func (s *reviewService) ListReviews(ctx context.Context, req *request.ListReviewsRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	req.Query = strings.TrimSpace(req.Query)
	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}
	if req.Sort == "" {
		req.Sort = repository.SortNewest
	}
	req.PaginatedRequest = req.Bounded(s.config.PageLimitDefault, s.config.PageLimitMax)
	if !utils.PageInRange(req.Page, req.Limit) {
		return nil, newValidationError(map[string]string{
			"page": fmt.Sprintf("Maximum value is %d", utils.MaxOffset/req.Limit+1),
		})
	}

	reviews, total, err := s.repo.List(ctx, repository.ListParams{
		Query:  req.Query,
		Sort:   req.Sort,
		Limit:  req.Limit,
		Offset: req.Offset(),
	})
	if err != nil {
		s.log.Error("Failed to list reviews",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("limit", req.Limit),
		)
		return nil, s.storeFailure("list reviews", err)
	}

	reviewResponses := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = response.ReviewToResponse(review)
	}

	s.log.Debug("Reviews listed",
		zap.Int("count", len(reviews)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.String("sort", req.Sort),
	)

	return response.NewPaginatedResponse(reviewResponses, req.Page, req.Limit, total), nil
}

func (s *reviewService) GetReview(ctx context.Context, id int64) (*response.ReviewResponse, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("get review", err)
	}
	if review == nil {
		return nil, ErrNotFound
	}

	reviewResp := response.ReviewToResponse(review)
	return &reviewResp, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, id int64, token string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update review validation failed", zap.Int64("review_id", id), zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	patch := req.Patch()
	if patch.IsEmpty() {
		return nil, newValidationError(map[string]string{"body": "nothing to update"})
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.authorize(ctx, id, token, "update"); err != nil {
		return nil, err
	}

	review, err := s.repo.Update(ctx, id, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		s.log.Warn("Update collides with an existing review", zap.Int64("review_id", id))
		return nil, ErrConflict
	case err != nil:
		return nil, s.storeFailure("update review", err)
	}

	s.log.Info("Review updated", zap.Int64("review_id", id))

	reviewResp := response.ReviewToResponse(review)
	return &reviewResp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id int64, token string) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.authorize(ctx, id, token, "delete"); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return s.storeFailure("delete review", err)
	}

	s.log.Info("Review deleted", zap.Int64("review_id", id))
	return nil
}

func (s *reviewService) GetProductReviewStats(ctx context.Context, product string) (*response.ProductReviewStats, error) {
	req := request.ProductStatsRequest{Product: strings.TrimSpace(product)}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	avgRating, reviewCount, err := s.repo.GetProductReviewStats(ctx, req.Product)
	if err != nil {
		return nil, s.storeFailure("get product review stats", err)
	}

	return &response.ProductReviewStats{
		Product:       req.Product,
		AverageRating: avgRating,
		ReviewCount:   reviewCount,
	}, nil
}

// ==================== HELPER METHODS ====================

// storeContext detaches writes from client cancellation so an abandoned
// request cannot leave a half-applied mutation.
func (s *reviewService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.StoreTimeout)
}

// authorize runs the ownership check. It never logs the presented token.
func (s *reviewService) authorize(ctx context.Context, id int64, token, action string) error {
	decision, err := s.verifier.Authorize(ctx, id, token)
	if err != nil {
		return s.storeFailure(action+" review", err)
	}
	if decision.Allowed {
		return nil
	}

	ownershipDeniedTotal.WithLabelValues(decision.Reason.String()).Inc()
	s.log.Warn("Ownership check denied",
		zap.Int64("review_id", id),
		zap.String("action", action),
		zap.Stringer("reason", decision.Reason),
	)

	switch decision.Reason {
	case ownership.ReasonNotFound:
		return ErrNotFound
	case ownership.ReasonMissingCredential:
		return ErrMissingCredential
	default:
		return ErrForbidden
	}
}

// absorbConflict resolves a unique-index rejection to the review that won
// the race.
func (s *reviewService) absorbConflict(ctx context.Context, review *entity.Review) (*response.CreateReviewResponse, error) {
	existing, err := s.repo.FindByDedupeKey(ctx, review.Author, review.Product, review.Content, review.DedupeBucket)
	if err != nil {
		return nil, s.storeFailure("create review", err)
	}
	if existing == nil {
		// winner was deleted before we could read it back
		return nil, fmt.Errorf("create review: %w", ErrConflict)
	}

	duplicatesAbsorbedTotal.WithLabelValues("constraint").Inc()
	s.log.Info("Duplicate submission absorbed",
		zap.Int64("review_id", existing.ID),
		zap.String("stage", "constraint"),
	)

	return &response.CreateReviewResponse{ID: existing.ID}, nil
}

func (s *reviewService) storeFailure(op string, err error) error {
	s.log.Error("Review store call failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
