package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/wolfman30/whatsauto-webhook/cmd/mainconfig"
	"github.com/wolfman30/whatsauto-webhook/internal/app/bootstrap"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

func main() {
	// Load .env file when present; the environment wins otherwise.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsauto webhook server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	source, err := mainconfig.CredentialSource(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	wh, err := bootstrap.BuildWebhook(ctx, cfg, source, logger)
	if err != nil {
		return err
	}

	// Surface credential problems at startup rather than on the first booking.
	go func() { _ = wh.Calendar.Warm() }()

	srv := newServer(cfg, wh.Handler)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newServer sizes the write timeout so a slow calendar insert still gets its
// reply out.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	writeTimeout := 15 * time.Second
	if cfg.CalendarTimeout > 0 && cfg.CalendarTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.CalendarTimeout + 5*time.Second
	}
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
