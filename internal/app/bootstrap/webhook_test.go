package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/whatsauto-webhook/internal/booking/gcal"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		StrictJSON:       true,
		ScheduleMode:     "offset",
		CalendarID:       "primary",
		CalendarTimeZone: "America/Sao_Paulo",
		CalendarTimeout:  time.Second,
	}
}

func TestBuildWebhookRequiresConfig(t *testing.T) {
	_, err := BuildWebhook(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildWebhookBadTimeZone(t *testing.T) {
	cfg := testConfig()
	cfg.CalendarTimeZone = "Nowhere/Atlantis"
	_, err := BuildWebhook(context.Background(), cfg, gcal.StaticSource(""), logging.Discard())
	assert.Error(t, err)
}

func TestBuildWebhookWithoutCredentials(t *testing.T) {
	wh, err := BuildWebhook(context.Background(), testConfig(), gcal.StaticSource(""), logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, wh.Calendar)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("app=WhatsAuto,sender=Carla,message=agendar reuniao"))
	rr := httptest.NewRecorder()
	wh.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["reply"], "Não foi possível agendar")

	rr = httptest.NewRecorder()
	wh.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"calendar":"unavailable"`)

	rr = httptest.NewRecorder()
	wh.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "whatsauto_webhook_bookings_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
