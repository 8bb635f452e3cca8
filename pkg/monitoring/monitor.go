package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	UnitsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "units_completed_total",
			Help: "Number of first-time unit completions",
		},
	)

	GemsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gems_awarded_total",
			Help: "Gems credited for unit completions",
		},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Graded submissions by kind",
		},
		[]string{"kind"},
	)

	MediaUploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_upload_bytes_total",
			Help: "Bytes stored through the media upload endpoint",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

// Init 向默认注册表注册所有指标，可重复调用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, UnitsCompleted, GemsAwarded, SubmissionsTotal, MediaUploadBytes)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
