package policy

import (
	"fmt"
	"time"

	"github.com/predictarena/pushkit/pkg/catalog"
)

// inQuietWindow reports whether now falls inside the daily HH:MM window.
// Start > End means an overnight window: 23:00-07:00 covers 23:30, 00:00
// and 06:59 but not 07:00. The comparison is minutes-of-day on a single
// reference clock (server UTC); per-user time zones are a known limitation
// carried over from the original behavior.
func inQuietWindow(now time.Time, window catalog.QuietHours) (bool, error) {
	if window.Start == "" || window.End == "" {
		return false, nil
	}

	start, err := parseClock(window.Start)
	if err != nil {
		return false, err
	}
	end, err := parseClock(window.End)
	if err != nil {
		return false, err
	}

	minute := now.Hour()*60 + now.Minute()

	if start > end {
		// Overnight window wraps midnight.
		return minute >= start || minute < end, nil
	}
	return minute >= start && minute < end, nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("policy: invalid HH:MM value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
