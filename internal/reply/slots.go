package reply

import (
	"strings"
	"time"
)

// ScheduleMode selects how a meeting start is chosen.
type ScheduleMode string

const (
	// ScheduleOffset books one hour from now unless the message names a day.
	ScheduleOffset ScheduleMode = "offset"
	// ScheduleByDay requires "hoje" or "amanhã" and asks otherwise.
	ScheduleByDay ScheduleMode = "day"
)

// ParseScheduleMode maps a config value to a mode, defaulting to ScheduleOffset.
func ParseScheduleMode(s string) ScheduleMode {
	if ScheduleMode(strings.ToLower(strings.TrimSpace(s))) == ScheduleByDay {
		return ScheduleByDay
	}
	return ScheduleOffset
}

const (
	meetingDuration = 30 * time.Minute
	offsetLead      = time.Hour
	todayLead       = 2 * time.Hour
	tomorrowHour    = 10
	slotGranularity = 30 * time.Minute
)

// resolveStart picks the meeting start for a folded message. ok is false when the
// mode requires a day and the message names none.
func resolveStart(mode ScheduleMode, now time.Time, loc *time.Location, folded string) (time.Time, bool) {
	now = now.In(loc)
	switch {
	case strings.Contains(folded, "amanha"):
		y, m, d := now.Date()
		return time.Date(y, m, d+1, tomorrowHour, 0, 0, 0, loc), true
	case strings.Contains(folded, "hoje"):
		return floorToSlot(now.Add(todayLead)), true
	case mode == ScheduleByDay:
		return time.Time{}, false
	default:
		return now.Add(offsetLead).Truncate(time.Minute), true
	}
}

// floorToSlot rounds t down to the previous half hour in t's location.
func floorToSlot(t time.Time) time.Time {
	y, m, d := t.Date()
	minute := t.Minute() - t.Minute()%int(slotGranularity/time.Minute)
	return time.Date(y, m, d, t.Hour(), minute, 0, 0, t.Location())
}
