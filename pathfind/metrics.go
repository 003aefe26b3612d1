package pathfind

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts finished searches by status.
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terranav_path_search_total",
		Help: "Path searches by result status.",
	}, []string{"status"})

	// searchDuration tracks wall time per search.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "terranav_path_search_duration_seconds",
		Help:    "Path search latency.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})

	// nodesExpanded tracks how much of the grid a search touched.
	nodesExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "terranav_path_nodes_expanded",
		Help:    "Nodes expanded per path search.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// raceWinner counts which direction of a race found the path first.
	raceWinner = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terranav_path_race_winner_total",
		Help: "Bidirectional races by winning direction.",
	}, []string{"direction"})
)

func observe(res Result, elapsed time.Duration) {
	searchTotal.WithLabelValues(res.Status.String()).Inc()
	if res.Status == StatusInvalid {
		return
	}
	searchDuration.Observe(elapsed.Seconds())
	nodesExpanded.Observe(float64(res.Expanded))
}
