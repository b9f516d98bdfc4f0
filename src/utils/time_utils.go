package utils

import "time"

const DayLayout = "2006-01-02"

// DayKey renders the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
