package models

import (
	"strings"
	"time"
)

// DateLayout is the fixed-width date format used for every stored date.
const DateLayout = "2006-01-02"

// DatePart returns the YYYY-MM-DD prefix of an ISO date or timestamp.
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return s
	}
	return s[:len(DateLayout)]
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps and plain dates.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InDateRange reports whether date (YYYY-MM-DD) falls in [start, end]; empty bounds are open.
func InDateRange(date, start, end string) bool {
	if date == "" {
		return false
	}
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
