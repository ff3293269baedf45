package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
)

const namespace = "mth"

// SuggestionMetrics owns one registry for the whole process.
type SuggestionMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	decisionsTotal      *prometheus.CounterVec
	decisionDuration    *prometheus.HistogramVec
	decisionSuggestions *prometheus.HistogramVec
	completionTotal     *prometheus.CounterVec
	completionDuration  prometheus.Histogram
	breakerState        *prometheus.GaugeVec
	publishedTotal      *prometheus.CounterVec
}

func NewSuggestionMetrics(service string) *SuggestionMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &SuggestionMetrics{
		service:  service,
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "requests_total",
				Help:        "Total HTTP requests processed.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "in_flight_requests",
				Help:        "Number of in-flight HTTP requests.",
				ConstLabels: constLabels,
			},
		),
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "suggest",
				Name:        "decisions_total",
				Help:        "Suggestion passes by the tier that produced the result.",
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		decisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "suggest",
				Name:        "decision_duration_seconds",
				Help:        "Suggestion pass duration in seconds by tier.",
				Buckets:     []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		decisionSuggestions: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "suggest",
				Name:        "suggestions",
				Help:        "Suggestions returned per pass.",
				Buckets:     []float64{0, 1, 2, 3},
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		completionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "completion",
				Name:        "queries_total",
				Help:        "Completion backend queries by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		completionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "completion",
				Name:        "query_duration_seconds",
				Help:        "Completion backend query duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "resilience",
				Name:        "breaker_open",
				Help:        "1 when the circuit breaker for an operation is open.",
				ConstLabels: constLabels,
			},
			[]string{"operation"},
		),
		publishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "events",
				Name:        "published_total",
				Help:        "Suggestion events handed to the publisher by status.",
				ConstLabels: constLabels,
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.decisionsTotal,
		m.decisionDuration,
		m.decisionSuggestions,
		m.completionTotal,
		m.completionDuration,
		m.breakerState,
		m.publishedTotal,
	)
	return m
}

func (m *SuggestionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SuggestionMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *SuggestionMetrics) ObserveDecision(tier domain.Tier, suggestions int, duration time.Duration) {
	label := string(tier)
	m.decisionsTotal.WithLabelValues(label).Inc()
	m.decisionDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.decisionSuggestions.WithLabelValues(label).Observe(float64(suggestions))
}

// ObserveBreakerState matches resilience.Config.OnStateChange.
func (m *SuggestionMetrics) ObserveBreakerState(operation, _, to string) {
	value := 0.0
	if to == "open" {
		value = 1
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}

func (m *SuggestionMetrics) ObservePublish(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.publishedTotal.WithLabelValues(status).Inc()
}

// InstrumentCompleter counts and times every query sent through completer.
func (m *SuggestionMetrics) InstrumentCompleter(completer ports.TextCompleter) ports.TextCompleter {
	return &instrumentedCompleter{next: completer, metrics: m}
}

type instrumentedCompleter struct {
	next    ports.TextCompleter
	metrics *SuggestionMetrics
}

func (c *instrumentedCompleter) Query(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	start := time.Now()
	reply, err := c.next.Query(ctx, prompt, maxTokens, temperature)
	c.metrics.completionDuration.Observe(time.Since(start).Seconds())
	c.metrics.completionTotal.WithLabelValues(completionOutcome(err)).Inc()
	return reply, err
}

func completionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	case domain.IsKind(err, domain.ErrBackendDisabled):
		return "disabled"
	case domain.IsKind(err, context.Canceled), domain.IsKind(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// InstrumentPublisher counts publish outcomes.
func (m *SuggestionMetrics) InstrumentPublisher(publisher ports.EventPublisher) ports.EventPublisher {
	return &instrumentedPublisher{next: publisher, metrics: m}
}

type instrumentedPublisher struct {
	next    ports.EventPublisher
	metrics *SuggestionMetrics
}

func (p *instrumentedPublisher) PublishSuggestions(ctx context.Context, event domain.SuggestionEvent) error {
	err := p.next.PublishSuggestions(ctx, event)
	p.metrics.ObservePublish(err)
	return err
}
