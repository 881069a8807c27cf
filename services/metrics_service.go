package services

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcsmp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcsmp_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	errorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcsmp_http_errors_total",
			Help: "HTTP requests answered with status >= 400",
		},
		[]string{"path"},
	)

	downloadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcsmp_downloads_total",
			Help: "Server binaries downloaded",
		},
		[]string{"channel"},
	)

	downloadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mcsmp_downloaded_bytes_total",
			Help: "Bytes of server binaries downloaded",
		},
	)

	runningServers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcsmp_running_servers",
			Help: "Server processes currently running",
		},
	)

	propertyResyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcsmp_property_resyncs_total",
			Help: "server.properties reloads caused by external edits",
		},
		[]string{"server"},
	)

	logLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcsmp_log_lines_total",
			Help: "Output lines read from server processes",
		},
		[]string{"server"},
	)

	// 健康检查接口使用的本地计数
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(errorCount)
	prometheus.MustRegister(downloadCount)
	prometheus.MustRegister(downloadedBytes)
	prometheus.MustRegister(runningServers)
	prometheus.MustRegister(propertyResyncs)
	prometheus.MustRegister(logLines)
}

func IncrementRequestCount(path string) {
	requestCount.WithLabelValues(path).Inc()
	totalRequests.Add(1)
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

func IncrementErrorCount(path string) {
	errorCount.WithLabelValues(path).Inc()
	totalErrors.Add(1)
}

func GetTotalRequestCount() int64 {
	return totalRequests.Load()
}

func GetTotalErrorCount() int64 {
	return totalErrors.Load()
}

func recordDownload(channel string, size int64) {
	downloadCount.WithLabelValues(channel).Inc()
	if size > 0 {
		downloadedBytes.Add(float64(size))
	}
}

func incrementPropertyResync(server string) {
	propertyResyncs.WithLabelValues(server).Inc()
}

func incrementLogLines(server string) {
	logLines.WithLabelValues(server).Inc()
}

func setRunningServers(n int) {
	runningServers.Set(float64(n))
}
