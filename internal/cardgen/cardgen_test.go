package cardgen

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPAN(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 512; i++ {
		pan, err := PAN()
		require.NoError(t, err)
		require.Len(t, pan, PANLength)
		require.Equal(t, byte(BrandDigit), pan[0])
		require.True(t, Valid(pan), "pan %s must pass the Luhn checksum", pan)
		seen[pan] = struct{}{}
	}
	// 512 draws over a 14-digit space should never collide
	require.Len(t, seen, 512)
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		pan  string
		want bool
	}{
		{name: "too short", pan: "4123", want: false},
		{name: "wrong brand digit", pan: "5555555555554444", want: false},
		{name: "non-digit", pan: "4abc567890123456", want: false},
		{name: "bad check digit", pan: "4000000000000001", want: false},
		// 4 followed by fifteen zeros minus its correct check digit
		{name: "valid", pan: "4000000000000002", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Valid(tc.pan))
		})
	}
}

func TestCVV(t *testing.T) {
	for i := 0; i < 512; i++ {
		cvv, err := CVV()
		require.NoError(t, err)
		require.Len(t, cvv, 3)
		n, err := strconv.Atoi(cvv)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100)
		require.LessOrEqual(t, n, 999)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	format := regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

	for i := 0; i < 64; i++ {
		exp, err := Expiry(now)
		require.NoError(t, err)
		require.Regexp(t, format, exp)

		parts := strings.Split(exp, "/")
		year, err := strconv.Atoi(parts[1])
		require.NoError(t, err)
		require.Equal(t, (now.Year()+3)%100, year)
	}
}
