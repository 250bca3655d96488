package service

import (
	"fmt"
	"log/slog"
	"time"
)

// Layouts accepted for scheduled_at. The dashboard's datetime-local inputs
// produce the offset-less forms, which are interpreted in the caller's IANA
// zone (UTC when none is given).
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// NormalizeScheduleTime turns a caller-supplied wall-clock string plus zone
// into a UTC instant. The strictly-future check happens here, at validation
// time only; clock drift afterwards never retroactively invalidates a post.
func NormalizeScheduleTime(raw, zone string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrInvalidTime
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return ensureFuture(t.UTC(), now)
	}

	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			slog.Info(err.Error())
			return time.Time{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidTime, zone)
		}
		loc = l
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ensureFuture(t.UTC(), now)
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
}

func ensureFuture(t, now time.Time) (time.Time, error) {
	if !t.After(now) {
		return time.Time{}, ErrPastSchedule
	}
	return t, nil
}
