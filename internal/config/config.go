package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Inbound payload handling
	StrictJSON bool

	// Reply / scheduling
	ScheduleMode string

	// Google Calendar
	CalendarID                string
	CalendarTimeZone          string
	CalendarAttendees         []string
	CalendarTimeout           time.Duration
	CalendarImpersonate       string
	GoogleCredentials         string
	GoogleCredentialsSSMParam string

	// AWS (used for the SSM credential source)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Optional per-IP rate limiting on the webhook; 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StrictJSON: getEnvAsBool("STRICT_JSON", true),

		ScheduleMode: strings.ToLower(strings.TrimSpace(getEnv("SCHEDULE_MODE", "offset"))),

		CalendarID:                getEnv("CALENDAR_ID", "primary"),
		CalendarTimeZone:          getEnv("CALENDAR_TIME_ZONE", "America/Sao_Paulo"),
		CalendarAttendees:         getEnvAsList("CALENDAR_ATTENDEES"),
		CalendarTimeout:           getEnvAsDuration("CALENDAR_TIMEOUT", 15*time.Second),
		CalendarImpersonate:       getEnv("CALENDAR_IMPERSONATE", ""),
		GoogleCredentials:         getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		GoogleCredentialsSSMParam: getEnv("GOOGLE_CREDENTIALS_SSM_PARAM", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
