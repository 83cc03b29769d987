package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "orchestrator",
			Name:      "provision_attempts_total",
			Help:      "Total provisioning attempts by result",
		},
		[]string{"result"},
	)

	stepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "orchestrator",
			Name:      "step_failures_total",
			Help:      "Failures by provisioning step",
		},
		[]string{"step"},
	)

	provisionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "deskprov",
			Subsystem: "orchestrator",
			Name:      "provision_duration_seconds",
			Help:      "Duration of successful provisioning attempts in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
		},
	)

	readinessTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "orchestrator",
			Name:      "readiness_timeouts_total",
			Help:      "Desktops that launched but did not report running in time",
		},
	)

	notificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "orchestrator",
			Name:      "notification_failures_total",
			Help:      "Credential emails that could not be delivered",
		},
	)
)

func init() {
	prometheus.MustRegister(
		attemptsTotal,
		stepFailuresTotal,
		provisionDuration,
		readinessTimeoutsTotal,
		notificationFailuresTotal,
	)
}
