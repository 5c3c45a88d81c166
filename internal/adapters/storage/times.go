package storage

import (
	"fmt"
	"time"
)

// FormatTime serializes a timestamp for TEXT columns.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatNullableTime serializes a timestamp, mapping the zero value to NULL.
func FormatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// ParseTime parses a stored timestamp, accepting both RFC3339Nano and RFC3339.
// PRE: value was written by FormatTime or an earlier schema version
// POST: Returns the parsed time or an error
func ParseTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", value)
}
