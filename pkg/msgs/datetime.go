package msgs

import (
	"fmt"
	"time"
)

// DateTime is a calendar date and time, always treated as UTC.
//
// It is kept as plain fields rather than a time.Time so the wire layout is
// stable and ordering is a field-by-field comparison.
type DateTime struct {
	Year       int32
	Month      uint32
	Day        uint32
	Hour       uint32
	Minute     uint32
	Second     uint32
	Nanosecond uint32
}

// DateTimeFrom converts t to a DateTime in UTC.
func DateTimeFrom(t time.Time) DateTime {
	t = t.UTC()
	return DateTime{
		Year:       int32(t.Year()),
		Month:      uint32(t.Month()),
		Day:        uint32(t.Day()),
		Hour:       uint32(t.Hour()),
		Minute:     uint32(t.Minute()),
		Second:     uint32(t.Second()),
		Nanosecond: uint32(t.Nanosecond()),
	}
}

// Now returns the current time as a DateTime.
func Now() DateTime {
	return DateTimeFrom(time.Now())
}

// Time converts to time.Time in UTC. Out-of-range fields are normalized
// the way time.Date does.
func (d DateTime) Time() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), int(d.Nanosecond), time.UTC)
}

// Add returns d+dur.
func (d DateTime) Add(dur time.Duration) DateTime {
	return DateTimeFrom(d.Time().Add(dur))
}

// Compare returns -1, 0 or +1 comparing year, month, day, hour, minute,
// second, then nanosecond.
func (d DateTime) Compare(o DateTime) int {
	if d.Year != o.Year {
		if d.Year < o.Year {
			return -1
		}
		return 1
	}
	a := [...]uint32{d.Month, d.Day, d.Hour, d.Minute, d.Second, d.Nanosecond}
	b := [...]uint32{o.Month, o.Day, o.Hour, o.Minute, o.Second, o.Nanosecond}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Before reports whether d is earlier than o.
func (d DateTime) Before(o DateTime) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d DateTime) After(o DateTime) bool { return d.Compare(o) > 0 }

func (d DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, d.Nanosecond)
}
