package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STRICT_JSON", "")
	t.Setenv("SCHEDULE_MODE", "")
	t.Setenv("CALENDAR_ID", "")
	t.Setenv("CALENDAR_TIME_ZONE", "")
	t.Setenv("CALENDAR_ATTENDEES", "")
	t.Setenv("CALENDAR_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if !cfg.StrictJSON {
		t.Fatalf("expected strict json by default")
	}
	if cfg.ScheduleMode != "offset" {
		t.Fatalf("expected offset schedule mode, got %s", cfg.ScheduleMode)
	}
	if cfg.CalendarID != "primary" {
		t.Fatalf("expected primary calendar, got %s", cfg.CalendarID)
	}
	if cfg.CalendarTimeZone != "America/Sao_Paulo" {
		t.Fatalf("expected Sao Paulo time zone, got %s", cfg.CalendarTimeZone)
	}
	if len(cfg.CalendarAttendees) != 0 {
		t.Fatalf("expected no attendees, got %v", cfg.CalendarAttendees)
	}
	if cfg.CalendarTimeout != 15*time.Second {
		t.Fatalf("expected 15s calendar timeout, got %s", cfg.CalendarTimeout)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limit disabled, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("STRICT_JSON", "false")
	t.Setenv("SCHEDULE_MODE", " Day ")
	t.Setenv("CALENDAR_ID", "team@example.com")
	t.Setenv("CALENDAR_ATTENDEES", "a@example.com, ,b@example.com")
	t.Setenv("CALENDAR_TIMEOUT", "0s")
	t.Setenv("GOOGLE_CREDENTIALS_SSM_PARAM", "/whatsauto/google")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.StrictJSON {
		t.Fatalf("expected strict json disabled")
	}
	if cfg.ScheduleMode != "day" {
		t.Fatalf("expected normalized schedule mode, got %q", cfg.ScheduleMode)
	}
	if cfg.CalendarID != "team@example.com" {
		t.Fatalf("expected calendar override, got %s", cfg.CalendarID)
	}
	if len(cfg.CalendarAttendees) != 2 || cfg.CalendarAttendees[1] != "b@example.com" {
		t.Fatalf("expected two attendees, got %v", cfg.CalendarAttendees)
	}
	if cfg.CalendarTimeout != 0 {
		t.Fatalf("expected timeout disabled, got %s", cfg.CalendarTimeout)
	}
	if cfg.GoogleCredentialsSSMParam != "/whatsauto/google" {
		t.Fatalf("expected ssm param override, got %s", cfg.GoogleCredentialsSSMParam)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 5 {
		t.Fatalf("expected rate limit override, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}
