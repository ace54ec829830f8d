package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/whatsauto-webhook/internal/http/handlers"
	"github.com/wolfman30/whatsauto-webhook/internal/inbound"
	"github.com/wolfman30/whatsauto-webhook/internal/observability/metrics"
	"github.com/wolfman30/whatsauto-webhook/internal/reply"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

func newTestRouter(t *testing.T, rps float64) http.Handler {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	decider, err := reply.NewDecider(nil, reply.Options{}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return New(&Config{
		Logger:         logger,
		Webhook:        handlers.NewWebhookHandler(inbound.NewNormalizer(true, logger), decider, metrics.NewWebhookMetrics(reg), logger),
		Health:         handlers.NewHealthHandler(nil, reg, logger),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimitRPS:   rps,
		RateLimitBurst: 1,
		Context:        ctx,
	})
}

func TestRouterIndex(t *testing.T) {
	router := newTestRouter(t, 0)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "WhatsAuto")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouterWebhookAndMetrics(t *testing.T) {
	router := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"message":"tudo bem?"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Estou bem, obrigado! E você?", resp["reply"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `whatsauto_webhook_replies_total{kind="smalltalk"} 1`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestRouterWebhookRejectsGet(t *testing.T) {
	router := newTestRouter(t, 0)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterRateLimitsWebhook(t *testing.T) {
	router := newTestRouter(t, 0.001)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("message=ola"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Real-IP", "203.0.113.7")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "index is not rate limited")
}
