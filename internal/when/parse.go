// Package when turns free-text scheduling phrases into absolute times.
// Accepted phrases: "in 45m", "in 2h", "today 7pm", "tomorrow 8:30pm",
// "2025-09-18 19:30", "19:30", "7pm".
package when

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reInMinutes = regexp.MustCompile(`^in\s+(\d+)\s*m(in(ute)?s?)?$`)
	reInHours   = regexp.MustCompile(`^in\s+(\d+)\s*h(ours?)?$`)
	reToday     = regexp.MustCompile(`^today\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	reTomorrow  = regexp.MustCompile(`^tomorrow\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	reAbsolute  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\s+(\d{1,2}):(\d{2})$`)
	reClock     = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)?$`)
	reBareHour  = regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`)
)

// Parse converts a scheduling phrase into an absolute time relative to
// now. The phrase families are tried in a fixed priority order and the
// first match wins. ok is false when no family matches; callers treat
// that as "no time supplied", not an error.
//
// Hours with an am/pm suffix get 12-hour conversion, hours without are
// taken as 24-hour. Out-of-range hours like "13pm" are accepted as given
// by the arithmetic, matching the bot's historical behavior.
// All times are in now's location; no timezone conversion happens here.
func Parse(text string, now time.Time) (t time.Time, ok bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, false
	}

	if m := reInMinutes.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Minute), true
	}
	if m := reInHours.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Hour), true
	}
	if m := reToday.FindStringSubmatch(s); m != nil {
		return atClock(now, m[1], m[2], m[3]), true
	}
	if m := reTomorrow.FindStringSubmatch(s); m != nil {
		return atClock(now.AddDate(0, 0, 1), m[1], m[2], m[3]), true
	}
	if m := reAbsolute.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		min, _ := strconv.Atoi(m[5])
		return time.Date(year, time.Month(month), day, hour, min, 0, 0, now.Location()), true
	}
	if m := reClock.FindStringSubmatch(s); m != nil {
		return atClock(now, m[1], m[2], m[3]), true
	}
	if m := reBareHour.FindStringSubmatch(s); m != nil {
		return atClock(now, m[1], "00", m[2]), true
	}

	return time.Time{}, false
}

// atClock resolves an hour/minute/am-pm triple against base's date.
func atClock(base time.Time, hourStr, minStr, ampm string) time.Time {
	hour, _ := strconv.Atoi(hourStr)
	min := 0
	if minStr != "" {
		min, _ = strconv.Atoi(minStr)
	}
	if ampm == "pm" && hour < 12 {
		hour += 12
	}
	if ampm == "am" && hour == 12 {
		hour = 0
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hour, min, 0, 0, base.Location())
}
