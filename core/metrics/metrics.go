// Package metrics declares the Prometheus instrumentation surfaced on the
// daemon's /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BlocksAppended counts successfully appended blocks, by op code.
	BlocksAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ebill",
		Name:      "blocks_appended_total",
		Help:      "Number of blocks appended to bill chains, by op code.",
	}, []string{"op_code"})

	// ActionErrors counts action-engine failures, by error code (§7).
	ActionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ebill",
		Name:      "action_errors_total",
		Help:      "Number of action engine rejections, by error code.",
	}, []string{"code"})

	// RelayPublishDuration observes how long a relay publish call takes.
	RelayPublishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ebill",
		Name:      "relay_publish_duration_seconds",
		Help:      "Duration of relay publish calls.",
		Buckets:   prometheus.DefBuckets,
	})

	// OutboxQueueDepth reports how many messages are awaiting retry.
	OutboxQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ebill",
		Name:      "outbox_queue_depth",
		Help:      "Number of messages currently queued for retry.",
	})

	// BitcoinPollDuration observes Bitcoin client call latency.
	BitcoinPollDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ebill",
		Name:      "bitcoin_poll_duration_seconds",
		Help:      "Duration of Bitcoin address status polls, by job.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
)

// Collectors returns every collector this module exposes, for registration
// against a single prometheus.Registerer at startup.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BlocksAppended,
		ActionErrors,
		RelayPublishDuration,
		OutboxQueueDepth,
		BitcoinPollDuration,
	}
}
