package request

import "reviewboard/pkg/utils"

type PaginatedRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Bounded clamps page to >= 1 and limit into [1, maxLimit], using
// defaultLimit when none was given.
func (p PaginatedRequest) Bounded(defaultLimit, maxLimit int) PaginatedRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit)
}

type ListReviewsRequest struct {
	PaginatedRequest
	Query string `json:"q" validate:"max=100"`
	Sort  string `json:"sort" validate:"omitempty,oneof=newest oldest rating_desc rating_asc"`
}
