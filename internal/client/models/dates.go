package models

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// CalendarDate returns t's calendar day at noon in the local zone, so that
// later zone conversions do not move it to a neighbouring day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

// ParseCalendarDate parses a YYYY-MM-DD string as a local-noon date.
func ParseCalendarDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDate(t), nil
}
