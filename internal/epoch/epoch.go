// Package epoch computes daily reset window identifiers and the TTL that
// aligns every epoch-scoped Redis key with the window boundary.
package epoch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock derives epoch identifiers from wall-clock time and a configured
// daily reset hour (UTC). The zero value resets at midnight UTC.
type Clock struct {
	ResetHour int
}

func NewClock(resetHour int) Clock {
	if resetHour < 0 || resetHour > 23 {
		resetHour = 0
	}
	return Clock{ResetHour: resetHour}
}

// Current returns the identifier of the window containing time.Now().
// Callers that also need a TTL must capture one timestamp and use At/TTLAt
// so both values describe the same instant.
func (c Clock) Current() string {
	return c.At(time.Now())
}

// At returns the window identifier for t, encoded as YYYY-MM-DD@HH.
// The date is that of the window's opening boundary, so times before the
// reset hour belong to the previous calendar day's window.
func (c Clock) At(t time.Time) string {
	t = t.UTC()
	if t.Hour() < c.ResetHour {
		t = t.AddDate(0, 0, -1)
	}
	return fmt.Sprintf("%s@%02d", t.Format(time.DateOnly), c.ResetHour)
}

// TTL returns the time remaining until the next reset boundary.
func (c Clock) TTL() time.Duration {
	return c.TTLAt(time.Now())
}

// TTLAt returns the time from t until the next reset boundary. Always in
// (0, 24h]: exactly on the boundary the next reset is a full day away.
func (c Clock) TTLAt(t time.Time) time.Duration {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), c.ResetHour, 0, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(t)
}

// Previous returns the identifier of the window immediately before epoch.
func (c Clock) Previous(epoch string) (string, error) {
	open, err := c.OpeningTime(epoch)
	if err != nil {
		return "", err
	}
	return c.At(open.AddDate(0, 0, -1)), nil
}

// OpeningTime parses an epoch identifier back into its opening boundary.
func (c Clock) OpeningTime(epoch string) (time.Time, error) {
	date, hour, ok := strings.Cut(epoch, "@")
	if !ok {
		return time.Time{}, fmt.Errorf("malformed epoch %q", epoch)
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed epoch %q: %w", epoch, err)
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, fmt.Errorf("malformed epoch %q", epoch)
	}
	return d.Add(time.Duration(h) * time.Hour), nil
}
