package utils

import (
	"strconv"
	"strings"
	"time"
)

// TrimToNil trims s and maps blank input to nil
func TrimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// TrimStringToNil is TrimToNil for a plain value
func TrimStringToNil(s string) *string {
	return TrimToNil(&s)
}

// ParseID parses a positive integer path id
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Clock returns the current time. Swapped out in tests.
type Clock func() time.Time

// SystemClock is UTC wall time at the precision PostgreSQL stores
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextTimestamp returns now, or prev+1µs when the clock has not moved past prev.
// Keeps updated_at strictly increasing across back-to-back mutations.
func NextTimestamp(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}
