package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

// timestampLayouts are tried in order; the first match wins. A bare date is
// midnight UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	time.RFC3339,
	models.DateLayout,
}

// ParseTimestamp parses s with the accepted wire layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DecodeError{
		Reason: DataCorrupted,
		Detail: "expected ISO-8601 date, got " + strconv.Quote(s),
	}
}

// FormatTimestamp renders t as ISO-8601 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Timestamp is a point in time on the wire.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatTimestamp(t.Time))
}

// UnmarshalJSON accepts null as the zero time. Any string, the empty one
// included, must match one of the wire layouts.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, null, err := unquote(b)
	if err != nil {
		return err
	}
	if null {
		t.Time = time.Time{}
		return nil
	}
	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

// Date is a calendar date on the wire (YYYY-MM-DD), held at local noon.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(models.DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, null, err := unquote(b)
	if err != nil {
		return err
	}
	if null {
		d.Time = time.Time{}
		return nil
	}
	if v, err := models.ParseCalendarDate(s); err == nil {
		d.Time = v
		return nil
	}
	// Some endpoints send full timestamps for date-only fields; keep the day
	// as written.
	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	d.Time = models.CalendarDate(v)
	return nil
}

func unquote(b []byte) (s string, null bool, err error) {
	if bytes.Equal(b, []byte("null")) {
		return "", true, nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false, &DecodeError{Reason: TypeMismatch, Detail: "expected date string, got " + string(b), Err: err}
	}
	return s, false, nil
}
