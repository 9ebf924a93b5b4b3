// internal/wire/wire.go
package wire

import (
	"reviewboard/internal/adaptor"
	"reviewboard/internal/data/repository"
	"reviewboard/internal/usecase"
	"reviewboard/pkg/middleware"
	"reviewboard/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes over repo.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, opts ...usecase.Option) *App {
	service := usecase.NewService(repo, config, logger, opts...)
	handler := adaptor.NewHandler(service, repo, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	if config.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	// Apply routes
	wireReview(r, handler.Review, logger)

	r.Get("/health", handler.Health.Live)
	r.Get("/health/ready", handler.Health.Ready)

	if config.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
