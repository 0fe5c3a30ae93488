package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyTimestamp = errors.New("timestamp is empty")

// Layouts accepted by ParseTimestamp, tried in order. Values without a
// zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 forms GitHub and its proxies emit.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised ISO-8601 timestamp %q", value)
}
