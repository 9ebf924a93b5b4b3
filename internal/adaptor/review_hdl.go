package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"reviewboard/internal/dto/request"
	"reviewboard/internal/usecase"
	"reviewboard/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 16 << 10

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReviewRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.service.CreateReview(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create review")
		return
	}

	utils.ResponseCreated(w, "success", created)
}

// ListReviews handles GET /api/reviews?q=&sort=&page=&limit=
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &request.ListReviewsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:  utils.ParseInt(query.Get("page"), 1),
			Limit: utils.ParseInt(query.Get("limit"), 0),
		},
		Query: query.Get("q"),
		Sort:  query.Get("sort"),
	}

	reviews, err := h.service.ListReviews(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetReview handles GET /api/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid review ID", nil)
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get review")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// UpdateReview handles PATCH and PUT /api/reviews/{id} (owner only)
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid review ID", nil)
		return
	}

	var req request.UpdateReviewRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), id, presentedToken(r, req.OwnershipToken), &req)
	if err != nil {
		h.handleServiceError(w, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// DeleteReview handles DELETE /api/reviews/{id} (owner only)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid review ID", nil)
		return
	}

	var req request.DeleteReviewRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.DeleteReview(r.Context(), id, presentedToken(r, req.OwnershipToken)); err != nil {
		h.handleServiceError(w, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetProductReviewStats handles GET /api/reviews/stats?product=
func (h *ReviewHandler) GetProductReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetProductReviewStats(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		h.handleServiceError(w, err, "get product review stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// presentedToken prefers the header captured by the OwnershipToken
// middleware and falls back to the body field.
func presentedToken(r *http.Request, bodyToken string) string {
	if token, ok := utils.GetOwnershipTokenFromContext(r.Context()); ok {
		return token
	}
	return bodyToken
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleServiceError maps service errors onto HTTP responses
func (h *ReviewHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.log.Debug(operation+" validation failed", zap.String("operation", operation))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		utils.ResponseNotFound(w, "Review not found")

	case errors.Is(err, usecase.ErrMissingCredential):
		utils.ResponseUnauthorized(w, "Ownership token required")

	case errors.Is(err, usecase.ErrForbidden):
		utils.ResponseForbidden(w, "Not allowed to modify this review")

	case errors.Is(err, usecase.ErrConflict):
		utils.ResponseConflict(w, "An identical review was posted moments ago")

	case errors.Is(err, usecase.ErrStoreUnavailable):
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnavailable(w, "Service temporarily unavailable, please retry")

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
