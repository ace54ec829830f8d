package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

func TestNewServerTimeouts(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "9090", CalendarTimeout: 15 * time.Second}, http.NotFoundHandler())
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 20*time.Second, srv.WriteTimeout)

	srv = newServer(&appconfig.Config{Port: "9090"}, http.NotFoundHandler())
	assert.Equal(t, 15*time.Second, srv.WriteTimeout)
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

func TestRunServesAndShutsDown(t *testing.T) {
	cfg := &appconfig.Config{
		Port:             freePort(t),
		StrictJSON:       true,
		ScheduleMode:     "offset",
		CalendarID:       "primary",
		CalendarTimeZone: "America/Sao_Paulo",
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, logging.Discard()) }()

	url := "http://127.0.0.1:" + cfg.Port + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
