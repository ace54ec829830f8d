package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeetingRequestValidate(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	valid := MeetingRequest{Start: start, End: start.Add(30 * time.Minute), TimeZone: "America/Sao_Paulo"}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.End = time.Time{}
	assert.Error(t, missing.Validate())

	backwards := valid
	backwards.End = start.Add(-time.Minute)
	assert.Error(t, backwards.Validate())

	noZone := valid
	noZone.TimeZone = ""
	assert.Error(t, noZone.Validate())
}

func TestKindOf(t *testing.T) {
	forbidden := &Error{Kind: KindForbidden, Err: errors.New("403")}
	wrapped := fmt.Errorf("schedule: %w", forbidden)

	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.Equal(t, KindNotFound, KindOf(&Error{Kind: KindNotFound, Err: errors.New("404")}))
	assert.Equal(t, KindOther, KindOf(errors.New("boom")))
	assert.Equal(t, KindOther, KindOf(ErrUnavailable))
	assert.Contains(t, forbidden.Error(), "forbidden")
	assert.ErrorIs(t, wrapped, forbidden.Err)
}

func TestDefaultReminders(t *testing.T) {
	r := DefaultReminders()
	assert.Equal(t, []Reminder{{Method: "email", Minutes: 1440}, {Method: "popup", Minutes: 10}}, r)
}
