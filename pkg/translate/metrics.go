package translate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notetrans_translation_requests_total",
			Help: "Total number of provider translation requests",
		},
		[]string{"provider", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notetrans_translation_request_duration_seconds",
			Help:    "Duration of provider translation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"provider", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notetrans_translation_request_size_bytes",
			Help:    "Size of the query text sent to a provider in bytes",
			Buckets: []float64{0, 16, 64, 256, 1024, 4096, 16384},
		},
		[]string{"provider"},
	)

	translateInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notetrans_translate_invocations_total",
			Help: "Translate command invocations by result",
		},
		[]string{"result"},
	)
)

// Invocation results recorded by RecordInvocation.
const (
	InvocationDispatched         = "dispatched"
	InvocationNoProvider         = "no_provider"
	InvocationMissingCredentials = "missing_credentials"
)

// RecordTranslationRequest records metrics for one provider request.
func RecordTranslationRequest(p Provider, duration time.Duration, success bool, requestSize int) {
	status := "success"
	if !success {
		status = "error"
	}

	translationRequestsTotal.WithLabelValues(string(p), status).Inc()
	translationRequestDuration.WithLabelValues(string(p), status).Observe(duration.Seconds())
	translationRequestSize.WithLabelValues(string(p)).Observe(float64(requestSize))
}

// RecordInvocation counts one translate invocation.
func RecordInvocation(result string) {
	translateInvocationsTotal.WithLabelValues(result).Inc()
}
