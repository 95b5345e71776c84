// Package metrics exposes Prometheus metrics for the rig API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rig_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rig_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	fitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rig_tether_fits_total",
			Help: "Tether model fits by outcome.",
		},
		[]string{"outcome"},
	)

	thrustVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rig_thrust_verdicts_total",
			Help: "Thrust analyses by validity verdict.",
		},
		[]string{"verdict"},
	)

	datasetReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rig_dataset_reloads_total",
			Help: "Thrust dataset reloads by outcome.",
		},
		[]string{"outcome"},
	)

	datasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rig_dataset_rows",
			Help: "Rows in the currently served thrust dataset.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(fitsTotal)
	prometheus.MustRegister(thrustVerdictsTotal)
	prometheus.MustRegister(datasetReloadsTotal)
	prometheus.MustRegister(datasetRows)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routeLabel keeps label cardinality bounded: unmatched paths share one
// label.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "other"
}

// Middleware records request count and duration for each request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		path := routeLabel(c)
		code := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, c.Request.Method).Observe(duration)
	}
}

// ObserveFit counts a tether fit.
func ObserveFit(ok bool) {
	if ok {
		fitsTotal.WithLabelValues("converged").Inc()
		return
	}
	fitsTotal.WithLabelValues("failed").Inc()
}

// ObserveVerdict counts a thrust analysis by verdict.
func ObserveVerdict(verdict string) {
	thrustVerdictsTotal.WithLabelValues(verdict).Inc()
}

// ObserveReload counts a dataset reload and records the served size on
// success.
func ObserveReload(rows int, err error) {
	if err != nil {
		datasetReloadsTotal.WithLabelValues("failed").Inc()
		return
	}
	datasetReloadsTotal.WithLabelValues("ok").Inc()
	datasetRows.Set(float64(rows))
}
