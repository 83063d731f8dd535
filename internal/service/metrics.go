package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregateRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_aggregate_recomputes_total",
			Help: "Number of product average-rating recomputations, by trigger",
		},
		[]string{"trigger"},
	)

	lockContentionRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_lock_contention_rejections_total",
			Help: "Number of mutations rejected because a product lock could not be acquired in time",
		},
	)

	cascadeDeletedReviews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_cascade_deleted_reviews_total",
			Help: "Number of reviews removed by customer-deletion cascades",
		},
	)
)
