package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "whatsauto"
	subsystem = "webhook"

	repliesName = namespace + "_" + subsystem + "_replies_total"
)

// WebhookMetrics exposes counters/histograms for the chat webhook.
type WebhookMetrics struct {
	requestsTotal  *prometheus.CounterVec
	repliesTotal   *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Inbound webhook requests by body strategy and status code",
		}, []string{"strategy", "status"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replies_total",
			Help:      "Replies sent by rule",
		}, []string{"kind"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_total",
			Help:      "Calendar booking attempts by outcome",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "latency_seconds",
			Help:      "Latency of webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.repliesTotal, m.bookingsTotal, m.webhookLatency)
	return m
}

func (m *WebhookMetrics) ObserveRequest(strategy string, status int) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.requestsTotal.WithLabelValues(strategy, fmt.Sprint(status)).Inc()
}

func (m *WebhookMetrics) ObserveReply(kind string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(kind).Inc()
}

func (m *WebhookMetrics) ObserveBooking(outcome string) {
	if m == nil || outcome == "" {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *WebhookMetrics) ObserveLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(kind).Observe(seconds)
}

// ReplyCounts reads the replies counter back from g, keyed by rule kind.
func ReplyCounts(g prometheus.Gatherer) (map[string]float64, error) {
	if g == nil {
		return map[string]float64{}, nil
	}
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	var family *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == repliesName {
			family = f
			break
		}
	}
	counts := map[string]float64{}
	if family == nil {
		return counts, nil
	}
	for _, metric := range family.GetMetric() {
		kind := labelValue(metric, "kind")
		if kind == "" || metric.GetCounter() == nil {
			continue
		}
		counts[kind] += metric.GetCounter().GetValue()
	}
	return counts, nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
