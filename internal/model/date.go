package model

import "time"

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t and returns midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b. Both are expected to be DateOf values.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
