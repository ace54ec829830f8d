package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveRequest("json", 200)
	m.ObserveRequest("", 400)
	m.ObserveReply("greeting")
	m.ObserveBooking("booked")
	m.ObserveBooking("")
	m.ObserveLatency("greeting", 0.05)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["whatsauto_webhook_requests_total"])
	assert.True(t, names["whatsauto_webhook_bookings_total"])
	assert.True(t, names["whatsauto_webhook_latency_seconds"])
}

func TestReplyCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveReply("greeting")
	m.ObserveReply("greeting")
	m.ObserveReply("echo")

	counts, err := ReplyCounts(reg)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"greeting": 2, "echo": 1}, counts)
}

func TestReplyCountsEmpty(t *testing.T) {
	counts, err := ReplyCounts(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, counts)

	counts, err = ReplyCounts(nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveRequest("json", 200)
	m.ObserveReply("echo")
	m.ObserveBooking("failed")
	m.ObserveLatency("echo", 0.1)
}
