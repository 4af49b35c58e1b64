package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned for dates that are not MM/YYYY, YYYY or "current".
var ErrInvalidDate = errors.New("invalid date")

// CurrentKeyword marks an interval that is still ongoing.
const CurrentKeyword = "current"

// IsCurrent reports whether s is the ongoing marker, in any case.
func IsCurrent(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), CurrentKeyword)
}

// ParseDate parses "MM/YYYY" (first of the month), "YYYY" (1 January) or
// "current" (now). Dates are built in now's location.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if IsCurrent(s) {
		return now, nil
	}

	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		year, err := parseYear(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()), nil
	case 2:
		month, err := strconv.Atoi(parts[0])
		if err != nil || month < 1 || month > 12 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		year, err := parseYear(parts[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, ErrInvalidDate
	}
	return strconv.Atoi(s)
}

const day = 24 * time.Hour

func days(d time.Duration) float64 {
	return float64(d) / float64(day)
}

// FormatDuration renders the span between start and end as "Ny Mm", "Ny" or
// "Mm", counting a month as 30 days.
func FormatDuration(start, end time.Time) string {
	months := int(end.Sub(start) / (30 * day))
	if months < 0 {
		months = 0
	}
	years, rem := months/12, months%12
	if years > 0 {
		if rem > 0 {
			return fmt.Sprintf("%dy %dm", years, rem)
		}
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dm", months)
}

// FormatMonth renders "Jan 2020".
func FormatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}

// FormatRange renders "Jan 2020 - Mar 2022" or "Jan 2020 - Present".
func FormatRange(start, end time.Time, current bool) string {
	if current {
		return FormatMonth(start) + " - Present"
	}
	return FormatMonth(start) + " - " + FormatMonth(end)
}
