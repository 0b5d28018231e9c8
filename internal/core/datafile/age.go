package datafile

import (
	"fmt"
	"time"
)

// OneWeek is the window of the dashboard's weekly statistics.
const OneWeek = 7 * 24 * time.Hour

// ParseAge parses a window age.
// Supports Go duration syntax (e.g., "90s", "30m", "4h") plus "Xd" for days
// and "Xw" for weeks.
func ParseAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("age must not be empty")
	}

	// Handle "d" and "w" suffixes, not supported by time.ParseDuration.
	if unit := s[len(s)-1]; len(s) > 1 && (unit == 'd' || unit == 'w') {
		var n int
		if _, err := fmt.Sscanf(s, "%d"+string(unit), &n); err != nil {
			return 0, fmt.Errorf("invalid age %q: %w", s, err)
		}
		if n <= 0 {
			return 0, fmt.Errorf("age must be positive, got %q", s)
		}
		d := time.Duration(n) * 24 * time.Hour
		if unit == 'w' {
			d *= 7
		}
		return d, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid age %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("age must be positive, got %q", s)
	}
	return d, nil
}
