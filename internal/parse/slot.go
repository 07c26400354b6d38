package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?`)

// Slot is a reservation date and clock time decoded from the database columns.
type Slot struct {
	Date    time.Time
	Hour    int
	Minute  int
	Weekday int // 0=Monday ... 6=Sunday
}

// At returns the slot as a wall-clock time in loc.
func (s Slot) At(loc *time.Location) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.Hour, s.Minute, 0, 0, loc)
}

// Weekday maps Go's Sunday-first weekday onto a Monday-first index.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Date parses a YYYY-MM-DD column. Timestamps with a time part are truncated.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return d, nil
}

// Clock parses HH:MM or HH:MM:SS, tolerating fractional seconds or a zone suffix.
func Clock(raw string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("unable to parse time %q", raw)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", raw)
	}
	return hour, minute, nil
}

// ParseSlot decodes a reservation's date and time columns.
func ParseSlot(date, clock string) (Slot, error) {
	d, err := Date(date)
	if err != nil {
		return Slot{}, err
	}
	hour, minute, err := Clock(clock)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Date: d, Hour: hour, Minute: minute, Weekday: Weekday(d)}, nil
}

// NormalizeClock renders HH:MM input as the HH:MM:SS form stored in the database.
func NormalizeClock(raw string) (string, error) {
	hour, minute, err := Clock(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:00", hour, minute), nil
}

// ShortClock trims a stored HH:MM:SS value to HH:MM for display.
func ShortClock(raw string) string {
	if len(raw) >= 5 {
		return raw[:5]
	}
	return raw
}
