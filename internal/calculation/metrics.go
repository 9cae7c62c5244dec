package calculation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actuarial_calculations_total",
		Help: "Completed calculations by plan type and outcome (ok, low_confidence, error).",
	}, []string{"plan_type", "outcome"})

	solverIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "actuarial_solver_iterations",
		Help:    "Objective evaluations per root-finding run.",
		Buckets: []float64{2, 5, 10, 20, 30, 50, 75, 100},
	})
)
