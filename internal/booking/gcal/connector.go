// Package gcal books meetings on Google Calendar with a service account.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/wolfman30/whatsauto-webhook/internal/booking"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

var tracer = otel.Tracer("whatsauto.internal.booking.gcal")

const credentialLoadTimeout = 10 * time.Second

// Options configures a Connector.
type Options struct {
	CalendarID string
	// Subject is the user impersonated through domain-wide delegation.
	Subject string
	// HTTPClient replaces the service account token source; tests point it at
	// an httptest server together with Endpoint.
	HTTPClient *http.Client
	Endpoint   string
}

// Connector implements booking.Scheduler. The calendar service is built on first
// use and cached for the life of the process; a failed build is cached too and
// every later call reports booking.ErrUnavailable.
type Connector struct {
	source     CredentialSource
	calendarID string
	opts       Options
	logger     *logging.Logger

	service func() (*calendar.Service, error)
}

// NewConnector creates a connector. Nothing is loaded until the first Schedule or
// Warm call.
func NewConnector(source CredentialSource, opts Options, logger *logging.Logger) *Connector {
	if logger == nil {
		logger = logging.Default()
	}
	calendarID := strings.TrimSpace(opts.CalendarID)
	if calendarID == "" {
		calendarID = "primary"
	}
	c := &Connector{
		source:     source,
		calendarID: calendarID,
		opts:       opts,
		logger:     logger,
	}
	c.service = sync.OnceValues(c.build)
	return c
}

// Warm triggers initialization so configuration problems are logged at startup.
func (c *Connector) Warm() error {
	_, err := c.service()
	return err
}

// Schedule inserts the meeting and returns the created event.
func (c *Connector) Schedule(ctx context.Context, req booking.MeetingRequest) (*booking.Event, error) {
	svc, err := c.service()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", booking.ErrUnavailable, err)
	}
	if err := req.Validate(); err != nil {
		return nil, &booking.Error{Kind: booking.KindOther, Err: err}
	}

	ctx, span := tracer.Start(ctx, "gcal.events.insert")
	defer span.End()
	span.SetAttributes(
		attribute.String("whatsauto.calendar_id", c.calendarID),
		attribute.String("whatsauto.meeting_start", req.Start.Format(time.RFC3339)),
	)

	created, err := svc.Events.Insert(c.calendarID, toCalendarEvent(req)).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		return nil, classify(err)
	}
	span.SetAttributes(attribute.String("whatsauto.event_id", created.Id))
	return &booking.Event{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func (c *Connector) build() (*calendar.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), credentialLoadTimeout)
	defer cancel()

	clientOpts := []option.ClientOption{}
	if c.opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(c.opts.Endpoint))
	}

	if c.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(c.opts.HTTPClient))
	} else {
		cfg, err := c.jwtConfig(ctx)
		if err != nil {
			return nil, err
		}
		// The token source outlives this call, so it must not use ctx.
		clientOpts = append(clientOpts, option.WithTokenSource(cfg.TokenSource(context.Background())))
	}

	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		c.logger.Error("failed to build google calendar service", "error", err)
		return nil, fmt.Errorf("gcal: new calendar service: %w", err)
	}
	c.logger.Info("google calendar service initialized", "calendar_id", c.calendarID)
	return svc, nil
}

func (c *Connector) jwtConfig(ctx context.Context) (*jwt.Config, error) {
	if c.source == nil {
		c.logger.Error("google calendar credentials not configured, scheduling disabled")
		return nil, ErrNoCredentials
	}
	raw, err := c.source.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			c.logger.Error("google calendar credentials not configured, scheduling disabled")
		} else {
			c.logger.Error("failed to load google calendar credentials", "error", err)
		}
		return nil, err
	}

	key, err := parseServiceAccount(raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedCredentials):
			c.logger.Error("google calendar credentials are not valid json", "error", err)
		default:
			c.logger.Error("google calendar credentials are not a service account key", "error", err)
		}
		return nil, err
	}

	doc, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredentials, err)
	}
	cfg, err := google.JWTConfigFromJSON(doc, calendar.CalendarScope)
	if err != nil {
		c.logger.Error("failed to build google jwt config", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredentials, err)
	}
	cfg.Subject = strings.TrimSpace(c.opts.Subject)
	return cfg, nil
}

func toCalendarEvent(req booking.MeetingRequest) *calendar.Event {
	ev := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: req.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: req.TimeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			// UseDefault=false is the zero value and would otherwise be omitted.
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, email := range req.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	for _, r := range req.Reminders {
		ev.Reminders.Overrides = append(ev.Reminders.Overrides, &calendar.EventReminder{Method: r.Method, Minutes: r.Minutes})
	}
	return ev
}

// classify maps Google API failures onto booking error kinds.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &booking.Error{Kind: booking.KindForbidden, Err: err}
		case http.StatusNotFound:
			return &booking.Error{Kind: booking.KindNotFound, Err: err}
		}
	}
	return &booking.Error{Kind: booking.KindOther, Err: err}
}
