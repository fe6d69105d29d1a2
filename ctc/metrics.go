package ctc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubes_deriv_contraction_duration_seconds",
		Help:    "Duration of a derivative contraction over a whole tube",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"mode"})

	slicesContracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubes_deriv_slices_contracted_total",
		Help: "Slices visited by the derivative contractor",
	}, []string{"mode"})

	slicesEmptied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubes_deriv_slices_emptied_total",
		Help: "Slices whose envelope was contracted to the empty set",
	})
)
