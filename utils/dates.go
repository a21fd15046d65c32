package utils

import (
	"fmt"
	"strings"
	"time"
)

var fallbackLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02"}

// ParseDateTime accepts RFC3339 first, then the plain layouts HTML date
// inputs send. Plain layouts are read as UTC.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use RFC3339 or YYYY-MM-DD", value)
}
