package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveHelpers(t *testing.T) {
	before := counterValue(t, upstreamRequests.WithLabelValues("island", "ok"))
	ObserveUpstream("island", "ok", 20*time.Millisecond)
	assert.Equal(t, before+1, counterValue(t, upstreamRequests.WithLabelValues("island", "ok")))

	before = counterValue(t, forecastsTotal.WithLabelValues("holt_winters", "fallback"))
	ObserveForecast("holt_winters", "fallback")
	assert.Equal(t, before+1, counterValue(t, forecastsTotal.WithLabelValues("holt_winters", "fallback")))

	before = counterValue(t, eventsPublished.WithLabelValues("error"))
	ObservePublish(errors.New("broker down"))
	assert.Equal(t, before+1, counterValue(t, eventsPublished.WithLabelValues("error")))
}

func TestFiberMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	before := counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/ping", "200"))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, before+1, counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "fni_http_requests_total")
}
