package adaptor

import (
	"reviewboard/internal/data/repository"
	"reviewboard/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Review *ReviewHandler
	Health *HealthHandler
}

func NewHandler(service *usecase.Service, repo *repository.Repository, log *zap.Logger) *Handler {
	return &Handler{
		Review: NewReviewHandler(service.Review, log),
		Health: NewHealthHandler(repo, log),
	}
}
