package dbx

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is how timestamps are stored in TEXT columns.
const TimeLayout = time.RFC3339Nano

// NullTime converts an optional timestamp to a column value.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ScanTime parses a nullable TEXT timestamp column.
func ScanTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored timestamp %q: %w", s.String, err)
	}
	return &t, nil
}

// NullInt64 converts an optional integer to a column value.
func NullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ScanInt64 converts a nullable INTEGER column to a pointer.
func ScanInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
