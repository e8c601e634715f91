package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseBool accepts the usual human spellings of a boolean, case-insensitively.
// The empty string is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "no", "f", "false", "off", "0":
		return false, nil
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid bool value %q", s)
}

// ParseInt parses a base-10 integer. "on"/"true" and "off"/"false" map to 1 and 0
// so checkbox values can feed integer flags.
func ParseInt(s string) (int64, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "on", "true":
		return 1, nil
	case "off", "false":
		return 0, nil
	default:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid int value %q", s)
		}
		return n, nil
	}
}

// ParseDate parses dates and timestamps in any of the common layouts
// (ISO 8601, RFC 1123, "2006/01/02", "Jan 2, 2006", unix seconds, ...).
func ParseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value %q", s)
	}
	return t, nil
}
