package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// settlementRuns counts runs by outcome.
	// Labels: "success", "invalid_input", "configuration_error", "error"
	settlementRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflow_settlement_runs_total",
		Help: "Total settlement runs by result",
	}, []string{"result"})

	settlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cashflow_settlement_duration_seconds",
		Help:    "Settlement run duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	settlementTransfers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cashflow_settlement_transfers",
		Help:    "Transfers emitted per settlement run",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
	})

	intermediaryHops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashflow_settlement_intermediary_hops_total",
		Help: "Deficits routed through the intermediary party",
	})

	planCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflow_plan_cache_operations_total",
		Help: "Plan cache operations by result",
	}, []string{"result"})
)
