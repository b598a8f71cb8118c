package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helix_runs_started_total",
		Help: "Number of optimization runs started.",
	})

	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_runs_finished_total",
		Help: "Number of optimization runs finished, by terminal status.",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "helix_run_duration_seconds",
		Help:    "Wall-clock duration of completed optimization runs.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
