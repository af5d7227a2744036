// Package metrics provides Prometheus metrics for the scribe service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "asha_scribe"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Transcription metrics
	TranscriptionsTotal  prometheus.Counter
	TranscriptionErrors  *prometheus.CounterVec
	TranscriptionLatency prometheus.Histogram
	AudioBytesReceived   prometheus.Counter

	// Note synthesis metrics
	NotesRequested prometheus.Counter
	NoteErrors     *prometheus.CounterVec
	NoteLatency    prometheus.Histogram
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TranscriptionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of transcription requests accepted",
		}),
		TranscriptionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_errors_total",
			Help:      "Total number of failed transcription requests",
		}, []string{"reason"}),
		TranscriptionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_latency_seconds",
			Help:      "Latency of transcription provider calls in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio payload bytes accepted for transcription",
		}),

		NotesRequested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_requested_total",
			Help:      "Total number of note synthesis requests",
		}),
		NoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_errors_total",
			Help:      "Total number of failed note synthesis requests",
		}, []string{"reason"}),
		NoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "note_latency_seconds",
			Help:      "Latency of language model calls in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}
