package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/whatsauto-webhook/internal/inbound"
	"github.com/wolfman30/whatsauto-webhook/internal/observability/metrics"
	"github.com/wolfman30/whatsauto-webhook/internal/reply"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

var tracer = otel.Tracer("whatsauto.internal.http.handlers")

const (
	maxWebhookBody = 1 << 20

	availabilityText = "API do WhatsAuto rodando! Ponto de entrada padrão."

	errInvalidBody = "Não foi possível ler o corpo da requisição"
	errInvalidJSON = "Corpo da requisição JSON inválido"
	errInternal    = "Erro interno do servidor ao processar mensagem"
)

// ReplyDecider picks the reply for normalized fields.
type ReplyDecider interface {
	Decide(ctx context.Context, fields inbound.Fields) reply.Decision
}

// WebhookHandler serves the WhatsAuto webhook.
type WebhookHandler struct {
	normalizer *inbound.Normalizer
	decider    ReplyDecider
	metrics    *metrics.WebhookMetrics
	logger     *logging.Logger
}

type replyResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func NewWebhookHandler(normalizer *inbound.Normalizer, decider ReplyDecider, m *metrics.WebhookMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if normalizer == nil {
		normalizer = inbound.NewNormalizer(true, logger)
	}
	return &WebhookHandler{normalizer: normalizer, decider: decider, metrics: m, logger: logger}
}

// Index answers GET / with a plain availability string.
func (h *WebhookHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, availabilityText)
}

// Handle answers POST /webhook with {"reply": ...}. Booking problems are reported
// in the reply text; only unreadable bodies, malformed JSON in strict mode, and
// unexpected failures produce an error status.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracer.Start(r.Context(), "whatsauto.webhook")
	defer span.End()

	var strategy inbound.Strategy
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			h.logger.Error("webhook handler panicked", "error", err, "stack", string(debug.Stack()))
			h.metrics.ObserveRequest(string(strategy), http.StatusInternalServerError)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errInternal, Details: err.Error()})
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		h.metrics.ObserveRequest("", http.StatusBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errInvalidBody, Details: err.Error()})
		return
	}

	result, err := h.normalizer.Normalize(inbound.RawRequest{
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	strategy = result.Strategy
	if err != nil {
		span.RecordError(err)
		status, summary := http.StatusInternalServerError, errInternal
		if errors.Is(err, inbound.ErrMalformedJSON) {
			status, summary = http.StatusBadRequest, errInvalidJSON
		}
		h.logger.Warn("failed to normalize webhook body", "error", err, "status", status)
		h.metrics.ObserveRequest(string(strategy), status)
		writeJSON(w, status, errorResponse{Error: summary, Details: err.Error()})
		return
	}

	fields := result.Fields
	span.SetAttributes(
		attribute.String("whatsauto.strategy", string(result.Strategy)),
		attribute.String("whatsauto.app", fields.App()),
	)
	h.logger.Info("webhook message received",
		"strategy", string(result.Strategy),
		"app", fields.App(),
		"sender", fields.Sender(),
		"group_name", fields.GroupName(),
	)

	decision := h.decider.Decide(ctx, fields)
	span.SetAttributes(attribute.String("whatsauto.reply_kind", string(decision.Kind)))
	if decision.Outcome != reply.OutcomeNone {
		span.SetAttributes(attribute.String("whatsauto.booking_outcome", string(decision.Outcome)))
	}

	h.metrics.ObserveRequest(string(strategy), http.StatusOK)
	h.metrics.ObserveReply(string(decision.Kind))
	h.metrics.ObserveBooking(string(decision.Outcome))
	h.metrics.ObserveLatency(string(decision.Kind), time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, replyResponse{Reply: decision.Reply})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
