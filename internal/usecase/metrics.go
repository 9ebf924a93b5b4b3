package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewboard_reviews_created_total",
		Help: "Reviews admitted and stored.",
	})

	// stage is "guard" for the window pre-check or "constraint" for the
	// unique index backstop.
	duplicatesAbsorbedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewboard_duplicates_absorbed_total",
			Help: "Submissions answered with an existing review instead of a new row.",
		},
		[]string{"stage"},
	)

	ownershipDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewboard_ownership_denied_total",
			Help: "Edit and delete attempts rejected by the ownership check.",
		},
		[]string{"reason"},
	)
)
