// Package dates provides helpers for the YYYY-MM-DD date strings used
// throughout the portfolio. Dates in this format compare lexicographically.
package dates

import "time"

const layout = "2006-01-02"

// Format renders a time as a YYYY-MM-DD date string.
func Format(t time.Time) string {
	return t.Format(layout)
}

// Parse parses a YYYY-MM-DD date string.
func Parse(s string) (time.Time, error) {
	return time.Parse(layout, s)
}

// Valid returns true if s is a well-formed YYYY-MM-DD date.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// DaysBetween returns the number of whole calendar days from one date
// to another (to - from). Negative when to is before from.
func DaysBetween(from, to string) (int, error) {
	f, err := Parse(from)
	if err != nil {
		return 0, err
	}
	t, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}
