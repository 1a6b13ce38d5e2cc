// Package localtime is the single boundary between stored instants (UTC) and
// the school's display time zone. Day boundaries and rendered timestamps
// both go through a Zone.
package localtime

import (
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
)

const (
	DefaultZone = "America/Bogota"

	// DisplayLayout renders DD/MM/YYYY hh:mm:ss AM/PM.
	DisplayLayout = "02/01/2006 03:04:05 PM"
	DateLayout    = "2006-01-02"
)

type Zone struct {
	loc *time.Location
}

// Load resolves a zone by IANA name. An empty name selects DefaultZone.
func Load(name string) (Zone, error) {
	if name == "" {
		name = DefaultZone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, errors.Wrapf(err, "loading time zone %q", name)
	}

	return Zone{loc: loc}, nil
}

// Fixed builds a zone from a location, mostly for tests.
func Fixed(loc *time.Location) Zone {
	return Zone{loc: loc}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

func (z Zone) Name() string {
	return z.Location().String()
}

// In converts t to display time.
func (z Zone) In(t time.Time) time.Time {
	return t.In(z.Location())
}

// StartOfDay returns local midnight of the display day containing t, as a
// UTC instant.
func (z Zone) StartOfDay(t time.Time) time.Time {
	local := z.In(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, z.Location()).UTC()
}

// Day returns the calendar day of t in display time, as midnight UTC of that
// date. It is the value stored in the ledger's lunch_day column.
func (z Zone) Day(t time.Time) time.Time {
	local := z.In(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders t in display time using DisplayLayout.
func (z Zone) Format(t time.Time) string {
	return z.In(t).Format(DisplayLayout)
}

// DayRange returns the instants [start of from, start of the day after to)
// for two calendar dates. Calendar arithmetic handles month and year
// rollover.
func (z Zone) DayRange(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, z.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, z.Location()).AddDate(0, 0, 1)

	return start.UTC(), end.UTC()
}
