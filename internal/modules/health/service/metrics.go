package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики обработки сигналов и состояние гейта для /metrics.
type Metrics struct {
	SignalsReceived prometheus.Counter
	SignalsAccepted prometheus.Counter
	SignalsRejected prometheus.Counter
	SignalsFailed   prometheus.Counter
	RankedApplied   prometheus.Counter

	GateAllowed    prometheus.Gauge
	SentimentValue prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		SignalsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_signals_received_total",
			Help: "Raw feed messages parsed into signal events.",
		}),
		SignalsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_signals_accepted_total",
			Help: "Signal events that passed the filter pipeline.",
		}),
		SignalsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_signals_rejected_total",
			Help: "Signal events rejected by the filter pipeline.",
		}),
		SignalsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_signals_failed_total",
			Help: "Signal events whose processing ended with an error.",
		}),
		RankedApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_ranked_lists_applied_total",
			Help: "Ranked pair lists applied to the bot configuration.",
		}),
		GateAllowed: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signal_bot_gate_trading_allowed",
			Help: "1 when the composite gate currently allows trading.",
		}),
		SentimentValue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signal_bot_sentiment_value",
			Help: "Latest fear and greed index value, -1 until first fetch.",
		}),
	}
}
