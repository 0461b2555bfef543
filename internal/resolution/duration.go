package resolution

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a parsed ISO-8601 duration (PnYnMnWnDTnHnMnS). Calendar
// components are kept separate so they can be applied to a reference date.
type Duration struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds float64
}

// ParseDuration parses an ISO-8601 duration such as "P1M", "P1Y2M" or "PT36H".
// Negative durations are not supported.
func ParseDuration(s string) (Duration, error) {
	var d Duration
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return d, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	body := s[1:]
	datePart, timePart, hasTime := strings.Cut(body, "T")
	if hasTime && timePart == "" {
		return d, fmt.Errorf("invalid ISO-8601 duration %q: empty time component", s)
	}

	seen := false
	err := scanComponents(datePart, func(value string, unit byte) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		switch unit {
		case 'Y':
			d.Years = n
		case 'M':
			d.Months = n
		case 'W':
			d.Weeks = n
		case 'D':
			d.Days = n
		default:
			return fmt.Errorf("unexpected designator %q in date component", unit)
		}
		seen = true
		return nil
	})
	if err != nil {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
	}

	err = scanComponents(timePart, func(value string, unit byte) error {
		switch unit {
		case 'H', 'M':
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			if unit == 'H' {
				d.Hours = n
			} else {
				d.Minutes = n
			}
		case 'S':
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return err
			}
			d.Seconds = f
		default:
			return fmt.Errorf("unexpected designator %q in time component", unit)
		}
		seen = true
		return nil
	})
	if err != nil {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
	}
	if !seen {
		return Duration{}, fmt.Errorf("invalid ISO-8601 duration %q: no components", s)
	}
	return d, nil
}

func scanComponents(s string, fn func(value string, unit byte) error) error {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' {
			continue
		}
		if i == start {
			return fmt.Errorf("designator %q without a value", c)
		}
		if err := fn(s[start:i], c); err != nil {
			return err
		}
		start = i + 1
	}
	if start != len(s) {
		return fmt.Errorf("trailing value %q without designator", s[start:])
	}
	return nil
}

// From returns the instant reached by adding d to ref.
func (d Duration) From(ref time.Time) time.Time {
	t := ref.AddDate(d.Years, d.Months, d.Weeks*7+d.Days)
	return t.Add(time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds*float64(time.Second)))
}

// HoursFrom returns the whole number of hours d spans when applied to ref.
func (d Duration) HoursFrom(ref time.Time) int {
	return int(d.From(ref).Sub(ref) / time.Hour)
}

// yearStart is 00:00 UTC on 1 January of year.
func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// hoursInYear returns the number of hours in year.
func hoursInYear(year int) int {
	return int(yearStart(year+1).Sub(yearStart(year)) / time.Hour)
}
