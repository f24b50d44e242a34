package id

import (
	"strings"
	"time"
)

const dateLayout = "20060102"

// FormatSnapshotName returns a snapshot name like "credit_20250103".
func FormatSnapshotName(prefix string, day time.Time) string {
	return prefix + "_" + day.Format(dateLayout)
}

// HasPrefix reports whether a snapshot name starts with prefix, ignoring case.
func HasPrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}

// Sanitize maps a free-form label to a name-safe token: letters and digits
// are kept, everything else becomes '-'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, s)
}
