package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ostraka/segstream/version"
)

// Gateway metrics, exposed on /metrics. Frame counters aggregate across
// sessions; per-session numbers stay in get_stats replies.
var (
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "segstream_active_sessions",
		Help: "Currently registered WebSocket sessions.",
	})

	metricSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segstream_sessions_total",
		Help: "Sessions accepted since startup.",
	})

	metricFramesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segstream_frames_processed_total",
		Help: "Frames that produced a segmentation reply.",
	})

	metricFramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segstream_frames_dropped_total",
		Help: "Frames refused by admission control.",
	})

	metricInferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "segstream_inference_duration_seconds",
		Help:    "Forward-pass plus decode latency per frame.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	metricBuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "segstream_build_info",
		Help: "Build metadata; the value is always 1.",
	}, []string{"version", "commit"})
)

func init() {
	info := version.Get()
	metricBuildInfo.WithLabelValues(info.Version, info.Short()).Set(1)
}
