package scheduling

import (
	"fmt"
	"time"
)

// Clock supplies the current time in the canonical reference timezone.
// Injectable so lead-time rules and timestamping are deterministic in tests.
// Location is the zone every proposed timestamp is normalized into before
// hour and weekday rules are applied, so the caller's UTC offset never
// changes the outcome.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoneClock struct {
	loc *time.Location
}

// NewClock builds a Clock pinned to the named timezone.
func NewClock(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &zoneClock{loc: loc}, nil
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Location() *time.Location {
	return c.loc
}
