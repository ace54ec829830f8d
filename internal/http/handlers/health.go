package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/whatsauto-webhook/internal/observability/metrics"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// CalendarProbe reports whether the calendar backend initialized.
type CalendarProbe interface {
	Warm() error
}

// HealthHandler reports liveness plus calendar readiness and reply counts.
type HealthHandler struct {
	calendar CalendarProbe
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewHealthHandler(calendar CalendarProbe, gatherer prometheus.Gatherer, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{calendar: calendar, gatherer: gatherer, logger: logger}
}

type healthResponse struct {
	Status   string             `json:"status"`
	Calendar string             `json:"calendar"`
	Replies  map[string]float64 `json:"replies,omitempty"`
}

// Health always answers 200; a broken calendar degrades bookings, not the service.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Calendar: "disabled"}
	if h.calendar != nil {
		resp.Calendar = "ready"
		if err := h.calendar.Warm(); err != nil {
			resp.Calendar = "unavailable"
		}
	}
	counts, err := metrics.ReplyCounts(h.gatherer)
	if err != nil {
		h.logger.Warn("failed to gather reply counts", "error", err)
	}
	resp.Replies = counts
	writeJSON(w, http.StatusOK, resp)
}
