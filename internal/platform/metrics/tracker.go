package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(remoteCallsLatencyMs, pollsTotal, stageTransitionsTotal, finalizeChecksTotal, staleResponsesTotal)
}

var (
	remoteCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_calls_latency_ms",
			Help:    "Gateway call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"endpoint", "success"},
	)

	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_polls_total",
			Help: "Status polls issued, labeled by outcome (applied/stale/failed).",
		},
		[]string{"outcome"},
	)

	stageTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_stage_transitions_total",
			Help: "Stage changes applied to tracked jobs, labeled by target stage.",
		},
		[]string{"stage"},
	)

	finalizeChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_finalize_checks_total",
			Help: "Finalizer fan-outs, labeled by outcome (completed/pending/failed).",
		},
		[]string{"outcome"},
	)

	staleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_stale_responses_total",
			Help: "Gateway responses discarded because their job or generation was no longer current.",
		},
	)
)

func ObserveRemoteCall(endpoint string, started time.Time, success bool) {
	remoteCallsLatencyMs.WithLabelValues(norm(endpoint), strconv.FormatBool(success)).
		Observe(float64(time.Since(started).Milliseconds()))
}

func IncPoll(outcome string)          { pollsTotal.WithLabelValues(norm(outcome)).Inc() }
func IncStageTransition(stage string) { stageTransitionsTotal.WithLabelValues(norm(stage)).Inc() }
func IncFinalizeCheck(outcome string) { finalizeChecksTotal.WithLabelValues(norm(outcome)).Inc() }
func IncStaleResponse()               { staleResponsesTotal.Inc() }
