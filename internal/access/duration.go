package access

import (
	"fmt"
	"strings"
	"time"
)

// LockDuration is how long the app may stay in the background before it
// locks. LockNever disables auto-lock.
type LockDuration time.Duration

const (
	LockAfter3s LockDuration = LockDuration(3 * time.Second)
	LockAfter5s LockDuration = LockDuration(5 * time.Second)
	LockNever   LockDuration = -1

	DefaultLockDuration = LockAfter3s
)

// LockDurations lists the selectable options in display order
var LockDurations = []LockDuration{LockAfter3s, LockAfter5s, LockNever}

// LockDurationFromMillis decodes a persisted value. Zero and missing values
// fall back to the default; any negative value means never.
func LockDurationFromMillis(ms int64) LockDuration {
	switch {
	case ms < 0:
		return LockNever
	case ms == 0:
		return DefaultLockDuration
	default:
		return LockDuration(time.Duration(ms) * time.Millisecond)
	}
}

// Millis encodes d for persistence. Never is stored as -1.
func (d LockDuration) Millis() int64 {
	if d.IsNever() {
		return -1
	}
	return time.Duration(d).Milliseconds()
}

// IsNever reports whether auto-lock is disabled
func (d LockDuration) IsNever() bool {
	return d < 0
}

// Expired reports whether elapsed has reached d
func (d LockDuration) Expired(elapsed time.Duration) bool {
	if d.IsNever() {
		return false
	}
	return elapsed >= time.Duration(d)
}

func (d LockDuration) String() string {
	if d.IsNever() {
		return "never"
	}
	return time.Duration(d).String()
}

// ParseLockDuration accepts "never" or a Go duration such as "3s".
func ParseLockDuration(s string) (LockDuration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "never" {
		return LockNever, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lock duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid lock duration %q: must be positive or never", s)
	}
	return LockDuration(d), nil
}
