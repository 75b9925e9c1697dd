package generator

import (
	"strings"
	"time"
)

// Filename names a saved QR code after the moment it was saved: an ISO-8601 timestamp
// without fractional seconds, with ':' replaced so it is valid on every filesystem.
func Filename(t time.Time) string {
	stamp := t.Truncate(time.Second).Format("2006-01-02T15:04:05")
	return strings.ReplaceAll(stamp, ":", "-") + ".png"
}
