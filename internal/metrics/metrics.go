package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_gateway_transcriptions_total",
			Help: "Voice messages processed, by outcome (ok, error, rejected)",
		},
		[]string{"outcome"},
	)

	CompletionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_gateway_completion_attempts_total",
			Help: "Chat completion attempts, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	CompletionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voice_gateway_completion_fallbacks_total",
			Help: "Times the gateway fell back to the secondary provider",
		},
	)

	CompletionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "voice_gateway_completion_latency_seconds",
			Help: "End-to-end completion latency including retries",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voice_gateway_active_sessions",
			Help: "Users with transcription state in memory",
		},
	)

	OutboundChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voice_gateway_outbound_chunks_total",
			Help: "Message chunks sent back to channels",
		},
	)
)
