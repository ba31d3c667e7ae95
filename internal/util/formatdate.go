package util

import (
	"strconv"
	"strings"
	"time"
)

// FormatDate renders an epoch-millisecond string (as the API returns
// timestamps) as DD/MM/YYYY. RFC 3339 input is accepted too.
func FormatDate(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc).Format("02/01/2006")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc).Format("02/01/2006")
	}

	return ""
}
