package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the bot.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	jobsReceived         prometheus.Counter
	jobsRejected         *prometheus.CounterVec
	jobsFinished         *prometheus.CounterVec
	translationFallbacks prometheus.Counter
	stageDuration        *prometheus.HistogramVec
	queueDepth           prometheus.Gauge
}

// New creates and registers the bot metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	jobsReceived := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vtbot_jobs_received_total",
		Help: "Total number of video messages received",
	})
	jobsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vtbot_jobs_rejected_total",
		Help: "Video messages rejected before processing, by reason",
	}, []string{"reason"})
	jobsFinished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vtbot_jobs_finished_total",
		Help: "Jobs that reached a terminal state, by state",
	}, []string{"state"})
	translationFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vtbot_translation_fallbacks_total",
		Help: "Segments left untranslated after a translation failure",
	})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtbot_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1200},
	}, []string{"stage"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vtbot_queue_depth",
		Help: "Jobs waiting for a worker",
	})

	registry.MustRegister(
		jobsReceived,
		jobsRejected,
		jobsFinished,
		translationFallbacks,
		stageDuration,
		queueDepth,
	)

	return &Metrics{
		registry:             registry,
		jobsReceived:         jobsReceived,
		jobsRejected:         jobsRejected,
		jobsFinished:         jobsFinished,
		translationFallbacks: translationFallbacks,
		stageDuration:        stageDuration,
		queueDepth:           queueDepth,
	}
}

// IncReceived counts one inbound video.
func (m *Metrics) IncReceived() {
	if m == nil {
		return
	}
	m.jobsReceived.Inc()
}

// IncRejected counts a video turned away with reason ("too_large", "busy").
func (m *Metrics) IncRejected(reason string) {
	if m == nil {
		return
	}
	m.jobsRejected.WithLabelValues(reason).Inc()
}

// IncFinished counts a job reaching terminal state.
func (m *Metrics) IncFinished(state string) {
	if m == nil {
		return
	}
	m.jobsFinished.WithLabelValues(state).Inc()
}

// IncTranslationFallback counts one segment kept in the source language.
func (m *Metrics) IncTranslationFallback() {
	if m == nil {
		return
	}
	m.translationFallbacks.Inc()
}

// ObserveStage records how long stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetQueueDepth sets the queue depth gauge.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
