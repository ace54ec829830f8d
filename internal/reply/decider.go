// Package reply chooses the chat answer for a normalized inbound message and, for
// "agendar reunião" requests, books the meeting through a booking.Scheduler.
package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/whatsauto-webhook/internal/booking"
	"github.com/wolfman30/whatsauto-webhook/internal/inbound"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// Kind identifies which rule produced a reply.
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindSchedule  Kind = "schedule"
	KindClarify   Kind = "clarify"
	KindGreeting  Kind = "greeting"
	KindSmallTalk Kind = "smalltalk"
	KindEcho      Kind = "echo"
)

// Outcome is the result of the booking attempt on the scheduling branch.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeBooked      Outcome = "booked"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeForbidden   Outcome = "forbidden"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeFailed      Outcome = "failed"
)

// Decision is the reply chosen for one message.
type Decision struct {
	Kind    Kind
	Reply   string
	Outcome Outcome
	Event   *booking.Event
}

// Options configures a Decider.
type Options struct {
	Mode      ScheduleMode
	TimeZone  string
	Attendees []string
	// Timeout bounds each Schedule call; zero leaves the call unbounded.
	Timeout time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Decider maps messages to replies. It holds no per-conversation state.
type Decider struct {
	scheduler booking.Scheduler
	mode      ScheduleMode
	zone      string
	loc       *time.Location
	attendees []string
	timeout   time.Duration
	now       func() time.Time
	logger    *logging.Logger
}

// NewDecider creates a decider. A nil scheduler makes every booking attempt report
// the calendar as unavailable.
func NewDecider(scheduler booking.Scheduler, opts Options, logger *logging.Logger) (*Decider, error) {
	if logger == nil {
		logger = logging.Default()
	}
	zone := strings.TrimSpace(opts.TimeZone)
	if zone == "" {
		zone = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("reply: load time zone %q: %w", zone, err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mode := opts.Mode
	if mode == "" {
		mode = ScheduleOffset
	}
	return &Decider{
		scheduler: scheduler,
		mode:      mode,
		zone:      zone,
		loc:       loc,
		attendees: append([]string(nil), opts.Attendees...),
		timeout:   opts.Timeout,
		now:       now,
		logger:    logger,
	}, nil
}

// Decide applies the keyword rules in order; the first match wins.
func (d *Decider) Decide(ctx context.Context, fields inbound.Fields) Decision {
	message := fields.Message()
	folded := Fold(message)

	switch {
	case strings.TrimSpace(message) == "":
		return Decision{Kind: KindEmpty, Reply: msgEmpty}
	case strings.Contains(folded, "agendar") && strings.Contains(folded, "reuniao"):
		return d.schedule(ctx, fields, folded)
	case hasWord(folded, "ola"):
		return Decision{Kind: KindGreeting, Reply: greeting(fields.Sender(), fields.HasSender())}
	case strings.Contains(folded, "tudo bem"):
		return Decision{Kind: KindSmallTalk, Reply: msgSmallTalk}
	default:
		return Decision{Kind: KindEcho, Reply: echo(message)}
	}
}

func (d *Decider) schedule(ctx context.Context, fields inbound.Fields, folded string) Decision {
	start, ok := resolveStart(d.mode, d.now(), d.loc, folded)
	if !ok {
		return Decision{Kind: KindClarify, Reply: msgClarify}
	}

	req := d.meetingRequest(fields, start)
	if d.scheduler == nil {
		d.logger.Warn("booking skipped, calendar scheduler not configured", "sender", fields.Sender())
		return Decision{Kind: KindSchedule, Reply: msgUnavailable, Outcome: OutcomeUnavailable}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	event, err := d.scheduler.Schedule(ctx, req)
	if err != nil {
		outcome, text := failureReply(err)
		d.logger.Error("failed to book meeting", "error", err, "outcome", string(outcome), "sender", fields.Sender())
		return Decision{Kind: KindSchedule, Reply: text, Outcome: outcome}
	}
	if event == nil {
		event = &booking.Event{}
	}

	d.logger.Info("meeting booked", "event_id", event.ID, "link", event.HTMLLink, "start", start.Format(time.RFC3339))
	return Decision{
		Kind:    KindSchedule,
		Reply:   fmt.Sprintf(msgBookedFmt, start.Format(startLayout), event.HTMLLink),
		Outcome: OutcomeBooked,
		Event:   event,
	}
}

func (d *Decider) meetingRequest(fields inbound.Fields, start time.Time) booking.MeetingRequest {
	summary := fmt.Sprintf(summaryFmt, fields.Sender())
	if phone := fields.Get(inbound.FieldPhone, ""); phone != "" {
		summary = fmt.Sprintf(summaryWithPhoneFmt, fields.Sender(), phone)
	}
	return booking.MeetingRequest{
		Summary:     summary,
		Description: fmt.Sprintf(descriptionFmt, fields.App(), fields.GroupName(), fields.Message()),
		Start:       start,
		End:         start.Add(meetingDuration),
		TimeZone:    d.zone,
		Attendees:   append([]string(nil), d.attendees...),
		Reminders:   booking.DefaultReminders(),
	}
}

func failureReply(err error) (Outcome, string) {
	if errors.Is(err, booking.ErrUnavailable) {
		return OutcomeUnavailable, msgUnavailable
	}
	switch booking.KindOf(err) {
	case booking.KindForbidden:
		return OutcomeForbidden, msgForbidden
	case booking.KindNotFound:
		return OutcomeNotFound, msgNotFound
	default:
		return OutcomeFailed, msgBookFailed
	}
}
