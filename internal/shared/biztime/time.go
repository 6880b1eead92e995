// Package biztime computes calendar-day boundaries in the business timezone.
// Storage and transport stay in UTC; the business timezone only decides
// where "today" starts.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	DefaultTimezone = "UTC"
	DateLayout      = "2006-01-02"
)

var (
	mu          sync.RWMutex
	bizLocation = time.UTC
	clock       = time.Now
)

// Init sets the business timezone. An empty tz keeps UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load business timezone %q: %w", tz, err)
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	mu.RLock()
	now := clock
	mu.RUnlock()
	return now().UTC()
}

// SetClock replaces the time source and returns a func restoring it. Tests only.
func SetClock(fn func() time.Time) (restore func()) {
	mu.Lock()
	prev := clock
	clock = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		clock = prev
		mu.Unlock()
	}
}

// StartOfDayUTC returns midnight of t's business-timezone day, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	loc := Location()
	b := t.In(loc)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc).UTC()
}

// StartOfTomorrowUTC is the earliest instant that counts as "after today".
func StartOfTomorrowUTC(now time.Time) time.Time {
	loc := Location()
	b := now.In(loc)
	return time.Date(b.Year(), b.Month(), b.Day()+1, 0, 0, 0, 0, loc).UTC()
}

// IsAfterToday reports whether t falls on a calendar day later than now's.
func IsAfterToday(t, now time.Time) bool {
	return !t.Before(StartOfTomorrowUTC(now))
}

// ParseDate parses YYYY-MM-DD as business-timezone midnight, returned in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseDateOrTime accepts either YYYY-MM-DD or RFC3339.
func ParseDateOrTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return ParseDate(s)
}

func FormatDate(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}
