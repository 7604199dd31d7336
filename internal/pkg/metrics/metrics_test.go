package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration("success", time.Second)
		m.QuotaRejected("free")
		m.Scraped(true)
		m.BillingEvent("customer.subscription.created", "applied")
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveGeneration("success", 2*time.Second)
	m.ObserveGeneration("success", 0)
	m.QuotaRejected("free")
	m.Scraped(false)
	m.BillingEvent("customer.subscription.deleted", "applied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotaRejectionsTotal.WithLabelValues("free")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrapesTotal.WithLabelValues("absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillingEventsTotal.WithLabelValues("customer.subscription.deleted", "applied")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "adengine_http_requests_total")
}
