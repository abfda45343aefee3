// Package week handles planning-week identifiers. A week is identified by
// the ISO date (YYYY-MM-DD) of the Monday that begins it, and that identifier
// keys both the meal plan and the generated grocery list.
package week

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Start returns midnight on the Monday of the week containing t, in t's location.
func Start(t time.Time) time.Time {
	// time.Weekday numbers Sunday as 0; shift so Monday is the week start.
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// ID returns the week identifier for the week containing t.
func ID(t time.Time) string {
	return Start(t).Format(dateLayout)
}

// Parse validates a week identifier and returns the Monday it names.
func Parse(id string) (time.Time, error) {
	t, err := time.Parse(dateLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week id %q: %w", id, err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("week id %q is not a Monday", id)
	}
	return t, nil
}

// Dates returns the seven ISO dates of the given week, Monday through Sunday.
// The id must already be validated by Parse.
func Dates(monday time.Time) []string {
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i).Format(dateLayout)
	}
	return dates
}

// Offset returns the identifier of the week n weeks after the given one.
// Negative n moves backwards.
func Offset(monday time.Time, n int) string {
	return monday.AddDate(0, 0, 7*n).Format(dateLayout)
}

// ContainsDate reports whether the ISO date falls inside the given week.
func ContainsDate(monday time.Time, date string) bool {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	diff := d.Sub(monday)
	return diff >= 0 && diff < 7*24*time.Hour
}
