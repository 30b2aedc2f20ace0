package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_radar_model_calls_total",
			Help: "Total number of chat-completion calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "entry_radar_model_call_duration_seconds",
			Help:    "Duration of chat-completion calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"op"},
	)

	MarketInsights = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_radar_market_insights_total",
			Help: "Market insights produced, by status (structured, raw, failed)",
		},
		[]string{"status"},
	)

	Runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_radar_runs_total",
			Help: "Engagement runs by outcome",
		},
		[]string{"outcome"},
	)
)

// 调用结果标签
const (
	OutcomeOK        = "ok"
	OutcomeConfig    = "config_error"
	OutcomeTransport = "transport_error"
	OutcomeCanceled  = "canceled"
)
