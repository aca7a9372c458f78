package measurement

import (
	"fmt"
	"strings"
	"time"
)

// SensorTimeLayout is the timestamp format written by the sensor boxes.
const SensorTimeLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	SensorTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTimestamp accepts the sensor layout and common ISO-8601 variants.
// Values without a zone are read as UTC wall clock; the hour of day is always
// taken from the value as written.
func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", trimmed)
}
