package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GenerationsTotal     *prometheus.CounterVec
	GenerationDuration   prometheus.Histogram
	QuotaRejectionsTotal *prometheus.CounterVec
	ScrapesTotal         *prometheus.CounterVec

	BillingEventsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adengine_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adengine_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adengine_generations_total",
				Help: "Generation requests by outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adengine_generation_duration_seconds",
				Help:    "Duration of the external fetch and model call",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
		QuotaRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adengine_quota_rejections_total",
				Help: "Generation requests refused because the monthly limit was reached",
			},
			[]string{"plan"},
		),
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adengine_scrapes_total",
				Help: "Context fetches by result",
			},
			[]string{"result"},
		),
		BillingEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adengine_billing_events_total",
				Help: "Stripe webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.QuotaRejectionsTotal,
		m.ScrapesTotal,
		m.BillingEventsTotal,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGeneration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.GenerationDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) QuotaRejected(plan string) {
	if m == nil {
		return
	}
	m.QuotaRejectionsTotal.WithLabelValues(plan).Inc()
}

func (m *Metrics) Scraped(ok bool) {
	if m == nil {
		return
	}
	result := "absent"
	if ok {
		result = "ok"
	}
	m.ScrapesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) BillingEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.BillingEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
