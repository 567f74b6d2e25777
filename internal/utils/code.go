package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReservationCode builds a human-readable reservation code from a
// millisecond timestamp and a short random suffix, e.g.
// "RES-1735689600123-7KQ2". Uniqueness is probabilistic: the code is not
// checked against the store before insert, and a collision surfaces as a
// unique-constraint failure that the caller retries with a fresh code.
func NewReservationCode(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return fmt.Sprintf("RES-%d-%s", now.UnixMilli(), buf), nil
}
