package utils

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservationCodeFormat(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	code, err := NewReservationCode(now)
	require.NoError(t, err)

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "RES", parts[0])

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)

	require.Len(t, parts[2], 4)
	for _, r := range parts[2] {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestNewReservationCodeNoCollisions(t *testing.T) {
	// Distinct timestamps make the timestamp component unique on its own;
	// generating many codes exercises the random suffix path as well.
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		code, err := NewReservationCode(base.Add(time.Duration(i) * time.Millisecond))
		require.NoError(t, err)
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code generated: %s", code)
		}
		seen[code] = struct{}{}
	}
}

func TestNewReservationCodeSuffixVaries(t *testing.T) {
	// Same instant, different suffixes: the random component must not be
	// deterministic per timestamp.
	now := time.Now()
	suffixes := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := NewReservationCode(now)
		require.NoError(t, err)
		suffixes[strings.Split(code, "-")[2]] = struct{}{}
	}
	if len(suffixes) < 2 {
		t.Fatalf("expected varying suffixes, got %d distinct out of 50", len(suffixes))
	}
}

func ExampleNewReservationCode() {
	code, _ := NewReservationCode(time.UnixMilli(1735689600123))
	fmt.Println(strings.HasPrefix(code, "RES-1735689600123-"))
	// Output: true
}
