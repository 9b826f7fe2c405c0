// Package observability exposes Prometheus metrics for the agent's
// external calls and parsing outcomes.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	parseOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_agent",
		Subsystem: "parser",
		Name:      "parse_total",
		Help:      "Prompt parse attempts by path (model, fallback) and outcome (success, error).",
	}, []string{"path", "outcome"})

	activitiesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_agent",
		Subsystem: "workflow",
		Name:      "activities_created_total",
		Help:      "Activities successfully created on the tracking service.",
	})

	completionCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_agent",
		Subsystem: "completion",
		Name:      "call_duration_seconds",
		Help:      "Latency of chat-completion API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	trackerCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_agent",
		Subsystem: "tracker",
		Name:      "call_duration_seconds",
		Help:      "Latency of activity-tracking API calls by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})
)

func init() {
	prometheus.MustRegister(parseOutcomes, activitiesCreated, completionCallDuration, trackerCallDuration)
}

// RecordParse counts one parse attempt.
func RecordParse(path, outcome string) {
	parseOutcomes.WithLabelValues(path, outcome).Inc()
}

// RecordActivityCreated counts one successful remote creation.
func RecordActivityCreated() {
	activitiesCreated.Inc()
}

// ObserveCompletionCall records the latency of one completion call.
func ObserveCompletionCall(d time.Duration, err error) {
	completionCallDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

// ObserveTrackerCall records the latency of one tracking-service call.
func ObserveTrackerCall(endpoint string, d time.Duration, err error) {
	trackerCallDuration.WithLabelValues(endpoint, outcome(err)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
