package plot

import "github.com/prometheus/client_golang/prometheus"

var (
	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mayflywatch",
			Subsystem: "plot",
			Name:      "frames_total",
			Help:      "Total number of frames pushed to the live plot",
		},
	)

	droppedFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mayflywatch",
			Subsystem: "plot",
			Name:      "dropped_frames_total",
			Help:      "Frames skipped because a stream client was too slow",
		},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mayflywatch",
			Subsystem: "plot",
			Name:      "stream_clients",
			Help:      "Connected live plot stream clients",
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal, droppedFrames, streamClients)
}
