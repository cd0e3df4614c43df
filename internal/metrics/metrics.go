package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for external calls.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeEmpty    = "empty"
	OutcomeDisabled = "disabled"
)

var (
	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_external_calls_total",
			Help: "Calls to external collaborators (vision, search, classifier, embeddings, scrape) by outcome",
		},
		[]string{"service", "outcome"},
	)

	ExternalFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_external_fallbacks_total",
			Help: "Times a documented fallback was substituted for an external call",
		},
		[]string{"service"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CompetitorCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_competitor_cache_total",
			Help: "Competitor quote cache lookups by result",
		},
		[]string{"result"},
	)

	DemandScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "market_demand_score",
			Help:    "Distribution of computed demand scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		},
	)

	RiskLevels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_risk_level_total",
			Help: "Content risk verdicts by level",
		},
		[]string{"level"},
	)
)

// Fallback records both the failed call and the substitution.
func Fallback(service, outcome string) {
	ExternalCalls.WithLabelValues(service, outcome).Inc()
	ExternalFallbacks.WithLabelValues(service).Inc()
}

// Success records a successful external call.
func Success(service string) {
	ExternalCalls.WithLabelValues(service, OutcomeSuccess).Inc()
}
