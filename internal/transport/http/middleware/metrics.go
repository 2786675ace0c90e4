package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions configures the HTTP metrics middleware.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Buckets    []float64
}

// HTTPMetrics instruments HTTP traffic with Prometheus collectors.
type HTTPMetrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	respBytes *prometheus.SummaryVec
	inFlight  prometheus.Gauge
}

// NewHTTPMetrics builds and registers the traffic collectors. Registering
// twice against the same registerer reuses the existing collectors.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "ligera"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   buckets,
		}, []string{"method", "route", "status"}),
		respBytes: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response body size by route.",
		}, []string{"route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}),
	}

	var err error
	if m.requests, err = registerCounterVec(reg, m.requests); err != nil {
		return nil, err
	}
	if m.latency, err = registerHistogramVec(reg, m.latency); err != nil {
		return nil, err
	}
	if m.respBytes, err = registerSummaryVec(reg, m.respBytes); err != nil {
		return nil, err
	}
	if m.inFlight, err = registerGauge(reg, m.inFlight); err != nil {
		return nil, err
	}

	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	existing, err := reuseExisting(reg, c)
	if err != nil {
		return nil, err
	}
	vec, ok := existing.(*prometheus.CounterVec)
	if !ok {
		return nil, fmt.Errorf("metrics: collector already registered with type %T", existing)
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, c *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	existing, err := reuseExisting(reg, c)
	if err != nil {
		return nil, err
	}
	vec, ok := existing.(*prometheus.HistogramVec)
	if !ok {
		return nil, fmt.Errorf("metrics: collector already registered with type %T", existing)
	}
	return vec, nil
}

func registerSummaryVec(reg prometheus.Registerer, c *prometheus.SummaryVec) (*prometheus.SummaryVec, error) {
	existing, err := reuseExisting(reg, c)
	if err != nil {
		return nil, err
	}
	vec, ok := existing.(*prometheus.SummaryVec)
	if !ok {
		return nil, fmt.Errorf("metrics: collector already registered with type %T", existing)
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	existing, err := reuseExisting(reg, g)
	if err != nil {
		return nil, err
	}
	gauge, ok := existing.(prometheus.Gauge)
	if !ok {
		return nil, fmt.Errorf("metrics: collector already registered with type %T", existing)
	}
	return gauge, nil
}

func reuseExisting(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector, nil
		}
		return nil, fmt.Errorf("metrics: register collector: %w", err)
	}
	return c, nil
}

// Handler records per-request traffic metrics.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()

		c.Next()

		m.inFlight.Dec()

		route := c.FullPath()
		if route == "" {
			// unmatched routes share one label to keep cardinality bounded
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.latency.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.respBytes.WithLabelValues(route).Observe(float64(size))
		}
	}
}
