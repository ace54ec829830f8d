package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/whatsauto-webhook/internal/api/router"
	"github.com/wolfman30/whatsauto-webhook/internal/booking/gcal"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/internal/http/handlers"
	"github.com/wolfman30/whatsauto-webhook/internal/inbound"
	"github.com/wolfman30/whatsauto-webhook/internal/observability/metrics"
	"github.com/wolfman30/whatsauto-webhook/internal/reply"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// Webhook is the assembled HTTP surface shared by the server and the Lambda.
type Webhook struct {
	Handler  http.Handler
	Calendar *gcal.Connector
	Registry *prometheus.Registry
}

// BuildWebhook wires normalizer, decider, calendar connector, metrics and router.
// ctx bounds background work started by the router.
func BuildWebhook(ctx context.Context, cfg *appconfig.Config, source gcal.CredentialSource, logger *logging.Logger) (*Webhook, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(reg)

	connector := gcal.NewConnector(source, gcal.Options{
		CalendarID: cfg.CalendarID,
		Subject:    cfg.CalendarImpersonate,
	}, logger.With("component", "gcal"))

	decider, err := reply.NewDecider(connector, reply.Options{
		Mode:      reply.ParseScheduleMode(cfg.ScheduleMode),
		TimeZone:  cfg.CalendarTimeZone,
		Attendees: cfg.CalendarAttendees,
		Timeout:   cfg.CalendarTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	normalizer := inbound.NewNormalizer(cfg.StrictJSON, logger)
	handler := router.New(&router.Config{
		Logger:         logger,
		Webhook:        handlers.NewWebhookHandler(normalizer, decider, webhookMetrics, logger),
		Health:         handlers.NewHealthHandler(connector, reg, logger),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Context:        ctx,
	})

	logger.Info("webhook assembled",
		"strict_json", cfg.StrictJSON,
		"schedule_mode", cfg.ScheduleMode,
		"calendar_id", cfg.CalendarID,
		"time_zone", cfg.CalendarTimeZone,
	)
	return &Webhook{Handler: handler, Calendar: connector, Registry: reg}, nil
}
