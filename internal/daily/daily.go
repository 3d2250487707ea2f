// internal/daily/daily.go
//
// Daily challenge seeding. Every player gets the same opponent fleet on a
// given UTC day: the layout is drawn from a seed of HMAC(salt, YYYY-MM-DD).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey validates a YYYY-MM-DD key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// Seed returns the deterministic fleet seed for the day of t.
func Seed(t time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	// first 8 bytes; clear the sign bit so seeds print as positive numbers
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}
