// Package observability holds the Prometheus collectors shared by the HTTP
// server and the background worker.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	jobRuns   *prometheus.CounterVec
	jobTime   *prometheus.HistogramVec
	documents *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers collectors on reg, or once on the default registerer
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(reg)
}

func build(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tourdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "job_runs_total",
			Help:      "Background job runs by outcome.",
		}, []string{"job", "status"}),
		jobTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tourdesk",
			Name:      "job_duration_seconds",
			Help:      "Background job duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourdesk",
			Name:      "documents_issued_total",
			Help:      "Issued documents by type and whether the store upload succeeded.",
		}, []string{"type", "synced"}),
	}

	reg.MustRegister(m.requests, m.latency, m.jobRuns, m.jobTime, m.documents)

	return m
}

// Middleware records one sample per request, labelled by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) DocumentIssued(docType string, synced bool) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(docType, strconv.FormatBool(synced)).Inc()
}

type Tracker struct {
	m     *Metrics
	job   string
	start time.Time
}

func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{m: m, job: job, start: time.Now()}
}

// End records the run and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.m == nil {
		return err
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	t.m.jobRuns.WithLabelValues(t.job, status).Inc()
	t.m.jobTime.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())

	return err
}
