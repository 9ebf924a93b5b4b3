package usecase

import (
	"time"

	"reviewboard/internal/data/repository"
	"reviewboard/internal/ownership"
	"reviewboard/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Review ReviewService
}

// Option overrides a collaborator of the review service.
type Option func(*reviewService)

// WithClock replaces the wall clock used for created_at and the duplicate window.
func WithClock(now func() time.Time) Option {
	return func(s *reviewService) { s.now = now }
}

// WithIssuer replaces the ownership token issuer.
func WithIssuer(issuer ownership.Issuer) Option {
	return func(s *reviewService) { s.issuer = issuer }
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, opts ...Option) *Service {
	return &Service{
		Review: NewReviewService(repo.Review, config.Review, log, opts...),
	}
}
