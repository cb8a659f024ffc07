package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors:
// - blogstats_query_duration_seconds: duration of each report operation
// - blogstats_post_statistics_updates_total: write-back outcomes per post (updated|failed)
// - blogstats_sidebar_cache_requests_total: sidebar cache lookups (hit|miss|error)
// - blogstats_export_rows_total: rows produced by the activity export
var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogstats_query_duration_seconds",
			Help:    "Duration of report operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	PostStatisticsUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "blogstats_post_statistics_updates_total", Help: "Post statistics write-backs by result"},
		[]string{"result"},
	)
	SidebarCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "blogstats_sidebar_cache_requests_total", Help: "Sidebar cache lookups by result"},
		[]string{"result"},
	)
	ExportRows = prometheus.NewCounter(prometheus.CounterOpts{Name: "blogstats_export_rows_total", Help: "Rows written by the activity export"})
)

func init() {
	prometheus.MustRegister(QueryDuration, PostStatisticsUpdates, SidebarCacheRequests, ExportRows)
}

// ObserveSince records the time elapsed since start for operation. Use with defer.
func ObserveSince(operation string, start time.Time) {
	QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
