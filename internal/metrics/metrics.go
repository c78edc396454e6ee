package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/llm"
)

// Metrics holds all Prometheus metrics for ember.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FinalScore       prometheus.Histogram
	ProfileConflicts prometheus.Counter

	// LLM metrics
	LLMRequests *prometheus.CounterVec
	LLMErrors   *prometheus.CounterVec
	LLMLatency  *prometheus.HistogramVec

	// Recommendation metrics
	RecommendationsGenerated *prometheus.CounterVec
	RecommendationsFiltered  prometheus.Counter
	GenerationFailures       *prometheus.CounterVec
	Applications             *prometheus.CounterVec
	ApplicationTransitions   *prometheus.CounterVec
	Improvement              prometheus.Histogram

	// Background metrics
	Reanalyses      *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// New creates and registers all metrics on the default registry. Later calls
// return the same instance.
func New() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			AnalysesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_analyses_total",
					Help: "Total number of burnout analyses by resulting level",
				},
				[]string{"level", "degraded"},
			),
			AnalysisDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "ember_analysis_duration_seconds",
					Help:    "End-to-end analysis duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
				},
			),
			FinalScore: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "ember_final_score",
					Help:    "Distribution of final burnout scores",
					Buckets: prometheus.LinearBuckets(10, 10, 10),
				},
			),
			ProfileConflicts: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ember_profile_conflicts_total",
					Help: "Behavioral profile writes rejected by a concurrent update",
				},
			),

			LLMRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_llm_requests_total",
					Help: "Total number of LLM requests",
				},
				[]string{"task", "model", "success"},
			),
			LLMErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_llm_errors_total",
					Help: "Total number of failed LLM requests by error code",
				},
				[]string{"task", "error_code"},
			),
			LLMLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ember_llm_request_duration_seconds",
					Help:    "LLM request duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to 51s
				},
				[]string{"task"},
			),

			RecommendationsGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_recommendations_generated_total",
					Help: "Recommendations persisted after the safety filter",
				},
				[]string{"category"},
			),
			RecommendationsFiltered: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ember_recommendations_filtered_total",
					Help: "Recommendations removed by the safety filter",
				},
			),
			GenerationFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_generation_failures_total",
					Help: "Recommendation generation failures by error kind",
				},
				[]string{"kind"},
			),
			Applications: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_applications_total",
					Help: "Recommendation apply attempts",
				},
				[]string{"result"},
			),
			ApplicationTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_application_transitions_total",
					Help: "Application status transitions",
				},
				[]string{"to_status"},
			),
			Improvement: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "ember_burnout_improvement",
					Help:    "Score improvement (before minus after) of completed recommendations",
					Buckets: prometheus.LinearBuckets(-30, 10, 10),
				},
			),

			Reanalyses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_reanalyses_total",
					Help: "Background re-analyses by outcome",
				},
				[]string{"result"},
			),
			EventsPublished: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ember_events_published_total",
					Help: "Total number of events published",
				},
				[]string{"event_type"},
			),
		}
	})

	return sharedMetrics
}

// RecordAnalysis records one completed analysis.
func (m *Metrics) RecordAnalysis(a *domain.BurnoutAnalysis, elapsed time.Duration) {
	m.AnalysesTotal.WithLabelValues(string(a.Level), strconv.FormatBool(a.Degraded)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	m.FinalScore.Observe(a.FinalScore)
}

// RecordGeneration records the outcome of one recommendation cycle.
func (m *Metrics) RecordGeneration(kept []*domain.Recommendation, filtered int) {
	for _, r := range kept {
		m.RecommendationsGenerated.WithLabelValues(r.Category).Inc()
	}
	m.RecommendationsFiltered.Add(float64(filtered))
}

// RecordOutcome records a completed application's improvement.
func (m *Metrics) RecordOutcome(app *domain.RecommendationApplication) {
	if app.Improvement != nil {
		m.Improvement.Observe(*app.Improvement)
	}
}

// LLMObserver feeds llm call events into the LLM metrics.
type LLMObserver struct {
	m *Metrics
}

// NewLLMObserver creates an llm.Observer backed by m.
func NewLLMObserver(m *Metrics) *LLMObserver {
	return &LLMObserver{m: m}
}

func (o *LLMObserver) OnCallComplete(event llm.LLMCallEvent) {
	task := string(event.Task)
	o.m.LLMRequests.WithLabelValues(task, event.Model, strconv.FormatBool(event.Success)).Inc()
	o.m.LLMLatency.WithLabelValues(task).Observe(float64(event.LatencyMs) / 1000.0)
	if !event.Success {
		o.m.LLMErrors.WithLabelValues(task, event.ErrorCode).Inc()
	}
}
