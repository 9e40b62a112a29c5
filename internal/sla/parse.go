package sla

import (
	"regexp"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// MaxTimestampLen is the longest pause bound ParseTimestamp accepts,
// an RFC3339 value with nanoseconds and an offset.
const MaxTimestampLen = len("2006-01-02T15:04:05.999999999-07:00")

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ValidClock reports whether v is HH:MM or HH:MM:SS on a 24 hour clock.
func ValidClock(v string) bool {
	return clockPattern.MatchString(v)
}

// ValidDate reports whether v is a YYYY-MM-DD calendar date.
func ValidDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

// combine joins a YYYY-MM-DD date and a clock into a UTC instant.
func combine(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	clock = strings.TrimSpace(clock)
	if !clockPattern.MatchString(clock) {
		return time.Time{}, ErrInvalidTime
	}
	if len(clock) == 5 {
		clock += ":00"
	}
	tod, err := time.ParseInLocation("15:04:05", clock, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return day.Add(time.Duration(tod.Hour())*time.Hour +
		time.Duration(tod.Minute())*time.Minute +
		time.Duration(tod.Second())*time.Second), nil
}

// ParseTimestamp reads a pause bound. Values without an offset are UTC.
func ParseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if len(v) > MaxTimestampLen {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

func present(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
