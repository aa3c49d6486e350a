// Package metrics holds the prometheus collectors of the command channel and
// the batch engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeRejected = "rejected"
	OutcomeTimeout  = "timeout"
	OutcomeClosed   = "closed"
)

// Metrics groups collectors registered on one registry.
type Metrics struct {
	Registry        *prometheus.Registry
	CommandsSent    *prometheus.CounterVec
	CommandOutcomes *prometheus.CounterVec
	CommandLatency  *prometheus.HistogramVec
	Pending         prometheus.Gauge
	DroppedFrames   prometheus.Counter
	BatchOperations *prometheus.CounterVec
	Rollbacks       *prometheus.CounterVec
}

// New creates collectors on a dedicated registry.
func New() *Metrics {
	ret := &Metrics{
		Registry: prometheus.NewRegistry(),
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docbridge_commands_sent_total",
			Help: "Commands sent to the host by kind.",
		}, []string{"kind"}),
		CommandOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docbridge_command_outcomes_total",
			Help: "Terminal command outcomes.",
		}, []string{"kind", "outcome"}),
		CommandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docbridge_command_duration_seconds",
			Help:    "Time between send and terminal outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docbridge_commands_pending",
			Help: "Commands awaiting a response.",
		}),
		DroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docbridge_dropped_responses_total",
			Help: "Responses without a pending command.",
		}),
		BatchOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docbridge_batch_operations_total",
			Help: "Script and pipeline operations by engine and result.",
		}, []string{"engine", "result"}),
		Rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docbridge_rollbacks_total",
			Help: "Checkpoint restores by origin and result.",
		}, []string{"origin", "result"}),
	}
	ret.Registry.MustRegister(ret.CommandsSent, ret.CommandOutcomes, ret.CommandLatency,
		ret.Pending, ret.DroppedFrames, ret.BatchOperations, ret.Rollbacks)
	return ret
}

// Result returns "ok" or "error".
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
