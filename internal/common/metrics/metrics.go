// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_processed_total",
			Help: "Total number of dialogue turns processed",
		},
		[]string{"intent", "state"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_failed_total",
			Help: "Total number of turns that ended in a failed state",
		},
		[]string{"intent", "error_code"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"intent"},
	)

	SlotPrompts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_slot_prompts_total",
			Help: "Total number of follow-up prompts asking for a missing slot",
		},
		[]string{"intent", "slot"},
	)

	DataFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_data_fetch_failures_total",
			Help: "Total number of market data fetch failures",
		},
		[]string{"intent"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_conversations",
			Help: "Number of conversations with an in-flight turn",
		},
	)
)
