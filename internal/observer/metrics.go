package observer

import "github.com/prometheus/client_golang/prometheus"

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mayflywatch",
			Subsystem: "observer",
			Name:      "updates_total",
			Help:      "Snapshots delivered to observers by outcome",
		},
		[]string{"observer", "outcome"},
	)

	updateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mayflywatch",
			Subsystem: "observer",
			Name:      "update_duration_seconds",
			Help:      "Time spent inside an observer's Update",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"observer"},
	)
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomePanic = "panic"
)

func init() {
	prometheus.MustRegister(updatesTotal, updateDuration)
}
