package keeper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenbridge_operations_total",
			Help: "Total number of token bridge operations by result",
		}, []string{"operation", "result"})
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokenbridge_operation_duration_seconds",
			Help:    "Latency of token bridge operations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"operation"})
	vaasConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenbridge_vaas_consumed_total",
			Help: "Total number of VAAs added to the replay set",
		})
	messagesPostedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenbridge_messages_posted_total",
			Help: "Total number of token bridge messages handed to the core bridge by payload",
		}, []string{"payload"})
)

func observeOperation(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
