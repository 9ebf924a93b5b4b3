package request

import (
	"strings"

	"reviewboard/internal/data/entity"
)

type CreateReviewRequest struct {
	Author  string `json:"author" validate:"required,max=30"`
	Product string `json:"product" validate:"required,max=50"`
	Rating  *int   `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"required,min=3,max=500"`
}

// Normalize trims free-text fields so length rules apply to visible text.
func (r *CreateReviewRequest) Normalize() {
	r.Author = strings.TrimSpace(r.Author)
	r.Product = strings.TrimSpace(r.Product)
	r.Content = strings.TrimSpace(r.Content)
}

// UpdateReviewRequest is a partial update; omitted fields stay unchanged.
// OwnershipToken is a fallback for clients that cannot set the header.
type UpdateReviewRequest struct {
	OwnershipToken string  `json:"ownership_token,omitempty"`
	Author         *string `json:"author,omitempty" validate:"omitempty,min=1,max=30"`
	Product        *string `json:"product,omitempty" validate:"omitempty,min=1,max=50"`
	Rating         *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Content        *string `json:"content,omitempty" validate:"omitempty,min=3,max=500"`
}

func (r *UpdateReviewRequest) Normalize() {
	trimPtr(r.Author)
	trimPtr(r.Product)
	trimPtr(r.Content)
}

func (r *UpdateReviewRequest) Patch() entity.ReviewPatch {
	return entity.ReviewPatch{
		Author:  r.Author,
		Product: r.Product,
		Rating:  r.Rating,
		Content: r.Content,
	}
}

type DeleteReviewRequest struct {
	OwnershipToken string `json:"ownership_token,omitempty"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

type ProductStatsRequest struct {
	Product string `json:"product" validate:"required,max=50"`
}
