package metrics

import "time"

// DigitpadMetrics holds the counters the interaction controller reports.
type DigitpadMetrics struct {
	registry *Registry

	PredictionsTotal      *Counter
	PredictFailuresTotal  *Counter
	MalformedTotal        *Counter
	DebounceCancelled     *Counter
	TrainingSubmitted     *Counter
	TrainingTriggered     *Counter
	TrainingFailuresTotal *Counter
	ValidationRejects     *Counter
	StrokesTotal          *Counter

	InFlight *Gauge

	PredictLatency *Histogram
}

// NewDigitpadMetrics registers all metrics on registry, or on a fresh
// "digitpad" registry when nil.
func NewDigitpadMetrics(registry *Registry) *DigitpadMetrics {
	if registry == nil {
		registry = NewRegistry("digitpad")
	}

	return &DigitpadMetrics{
		registry: registry,

		PredictionsTotal: registry.Counter(
			"predictions_total",
			"Predictions received from the classifier",
			nil,
		),
		PredictFailuresTotal: registry.Counter(
			"predict_failures_total",
			"Predict requests that failed in transport",
			nil,
		),
		MalformedTotal: registry.Counter(
			"malformed_responses_total",
			"Predict responses rejected by schema validation",
			nil,
		),
		DebounceCancelled: registry.Counter(
			"debounce_cancelled_total",
			"Pending submissions superseded by a newer stroke or reset",
			nil,
		),
		TrainingSubmitted: registry.Counter(
			"training_submissions_total",
			"Labelled examples sent for training",
			nil,
		),
		TrainingTriggered: registry.Counter(
			"training_triggers_total",
			"Training runs requested",
			nil,
		),
		TrainingFailuresTotal: registry.Counter(
			"training_failures_total",
			"Training requests that failed",
			nil,
		),
		ValidationRejects: registry.Counter(
			"validation_rejections_total",
			"Actions refused before any request was made",
			nil,
		),
		StrokesTotal: registry.Counter(
			"strokes_total",
			"Completed strokes",
			nil,
		),
		InFlight: registry.Gauge(
			"requests_in_flight",
			"Classifier requests currently in flight",
			nil,
		),
		PredictLatency: registry.Histogram(
			"predict_latency_seconds",
			"Round trip time of predict requests",
			nil,
			LatencyBuckets,
		),
	}
}

func (m *DigitpadMetrics) Registry() *Registry { return m.registry }

// RecordPredict records the outcome of one predict round trip.
func (m *DigitpadMetrics) RecordPredict(d time.Duration, err error, malformed bool) {
	m.PredictLatency.ObserveDuration(d)
	switch {
	case err == nil:
		m.PredictionsTotal.Inc()
	case malformed:
		m.MalformedTotal.Inc()
	default:
		m.PredictFailuresTotal.Inc()
	}
}
