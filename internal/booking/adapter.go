// Package booking defines the meeting request handed to a calendar backend and
// the errors a backend may report. The Google Calendar implementation lives in
// booking/gcal.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Reminder is a reminder override sent with the event.
type Reminder struct {
	Method  string // "email" or "popup"
	Minutes int64
}

// DefaultReminders are one email a day ahead and a popup ten minutes before.
func DefaultReminders() []Reminder {
	return []Reminder{
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 10},
	}
}

// MeetingRequest carries everything needed to create a calendar event.
type MeetingRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Reminders   []Reminder
}

// Validate checks the request before it is sent to a backend.
func (r MeetingRequest) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("booking: start and end are required")
	}
	if !r.End.After(r.Start) {
		return fmt.Errorf("booking: end %s is not after start %s", r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	if r.TimeZone == "" {
		return errors.New("booking: time zone is required")
	}
	return nil
}

// Event is the created calendar entry.
type Event struct {
	ID       string
	HTMLLink string
}

// Scheduler creates calendar events. Implementations block until the backend
// answers; callers control the deadline through ctx.
type Scheduler interface {
	Schedule(ctx context.Context, req MeetingRequest) (*Event, error)
}

// ErrUnavailable means the calendar backend was never initialized.
var ErrUnavailable = errors.New("booking: calendar service unavailable")

// ErrorKind classifies a failed booking call.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindForbidden
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// Error is returned when the backend rejected or failed the insert.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("booking: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, KindOther when err is not an *Error.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindOther
}
