package stream

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "stream",
			Name:      "records_total",
			Help:      "Insert records decoded and dispatched to the orchestrator",
		},
	)

	recordErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskprov",
			Subsystem: "stream",
			Name:      "record_errors_total",
			Help:      "Records that failed to decode or process",
		},
	)
)

func init() {
	prometheus.MustRegister(recordsTotal, recordErrorsTotal)
}
