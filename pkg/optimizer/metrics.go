/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Per-group solve metrics
	solveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedopt_group_solve_duration_seconds",
			Help:    "Duration of one group's build and solve in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
	)

	groupsOptimized = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedopt_run_groups",
			Help: "Number of groups in the most recent optimization run",
		},
	)

	infeasibleGroups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedopt_infeasible_groups_total",
			Help: "Total number of groups whose model had no feasible ration",
		},
	)
	unboundedGroups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedopt_unbounded_groups_total",
			Help: "Total number of groups whose objective was unbounded",
		},
	)
)
