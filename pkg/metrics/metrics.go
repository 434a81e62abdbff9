package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// События инструментации слушателя (listener.start, listener.process_message, ...).
var (
	ListenerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listener_events_total",
			Help: "Number of instrumented listener events",
		},
		[]string{"event", "outcome"}, // outcome: ok|error
	)
	ListenerEventDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listener_event_duration_seconds",
			Help:    "Duration of instrumented listener events",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"event"},
	)
)

// Обработка сообщений слушателем.
var (
	MessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listener_messages_processed_total",
			Help: "Number of messages handled successfully",
		},
		[]string{"topic", "group_id"},
	)
	HandlerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listener_handler_errors_total",
			Help: "Number of failed handler attempts (each one is retried)",
		},
		[]string{"topic", "group_id"},
	)
	RetryAborted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listener_retry_aborted_total",
			Help: "Number of retry loops aborted by shutdown",
		},
		[]string{"topic", "group_id"},
	)
)

// Клиент Kafka.
var (
	KafkaMessagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_fetched_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_fetch_errors_total",
			Help: "Number of transient fetch errors",
		},
		[]string{"topic"},
	)
	KafkaCommitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_commit_failures_total",
			Help: "Number of failed offset commits",
		},
		[]string{"topic"},
	)
	KafkaOffsetLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kafka_offset_lag",
			Help: "Offset lag of the last batch per partition",
		},
		[]string{"topic", "partition"},
	)
)

var registerOnce sync.Once

// MustRegister регистрирует коллекторы в default registry; повторные вызовы безопасны.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ListenerEvents, ListenerEventDuration,
			MessagesProcessed, HandlerErrors, RetryAborted,
			KafkaMessagesFetched, KafkaFetchErrors, KafkaCommitFailures, KafkaOffsetLag,
		)
	})
}
