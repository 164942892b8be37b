package timeutil

import "time"

// TimestampLayout is the ISO 8601 UTC layout with millisecond precision used
// for list date fields written by the service.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp formats t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
