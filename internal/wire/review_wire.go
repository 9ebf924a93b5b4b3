package wire

import (
	"reviewboard/internal/adaptor"
	"reviewboard/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	log *zap.Logger,
) {
	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(middleware.OwnershipToken(log))

		// ==================== PUBLIC ROUTES ====================
		r.Post("/", reviewHandler.CreateReview)
		r.Get("/", reviewHandler.ListReviews)
		r.Get("/stats", reviewHandler.GetProductReviewStats)
		r.Get("/{id}", reviewHandler.GetReview)

		// ==================== OWNER ROUTES (X-Ownership-Token) ====================
		r.Patch("/{id}", reviewHandler.UpdateReview)
		r.Put("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)
	})
}
