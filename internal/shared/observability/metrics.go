package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_analyses_total",
		Help: "Total number of completed analyses by syntax verdict.",
	}, []string{"verdict"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codelens_phase_seconds",
		Help:    "Time spent in each pipeline phase.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"phase"})

	InvalidTokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codelens_invalid_tokens_total",
		Help: "Total number of tokens flagged as lexical anomalies.",
	})

	StructureErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_structure_errors_total",
		Help: "Total number of structure errors by kind.",
	}, []string{"kind"})

	ExecutionOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_execution_outcomes_total",
		Help: "Total number of execution outcomes by status.",
	}, []string{"status"})

	CollaboratorFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_collaborator_failures_total",
		Help: "Total number of collaborator invocations that failed.",
	}, []string{"collaborator"})

	HistoryWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_history_writes_total",
		Help: "Total number of run history writes by result.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codelens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelens_http_requests_total",
		Help: "Total number of HTTP requests by status code.",
	}, []string{"code"})

	HTTPRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codelens_http_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter.",
	})
)
