package response

import (
	"time"

	"reviewboard/internal/data/entity"
)

// ReviewResponse is the public projection of a review. It has no field for
// the ownership token.
type ReviewResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Product   string    `json:"product"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewResponse is the only place an ownership token is ever sent.
// The token is empty when the submission was absorbed as a duplicate.
type CreateReviewResponse struct {
	ID             int64  `json:"id"`
	OwnershipToken string `json:"ownership_token,omitempty"`
}

type ProductReviewStats struct {
	Product       string  `json:"product"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// Helper converter
func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		Author:    review.Author,
		Product:   review.Product,
		Rating:    review.Rating,
		Content:   review.Content,
		CreatedAt: review.CreatedAt,
	}
}
