// Package cardgen produces synthetic payment-card identifiers: Luhn-valid
// PANs with a fixed brand prefix, three-digit CVVs, and MM/YY expiries.
package cardgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// BrandDigit is the fixed first digit of every generated PAN.
const BrandDigit = '4'

// PANLength is the total digit count of a generated PAN including the
// Luhn check digit.
const PANLength = 16

// PAN generates a 16-digit card number: the brand digit, 14 uniformly
// random digits, and the Luhn check digit. Uniqueness against existing
// cards is the caller's responsibility.
func PAN() (string, error) {
	digits := make([]byte, 0, PANLength)
	digits = append(digits, BrandDigit)
	for i := 0; i < 14; i++ {
		d, err := randInt(10)
		if err != nil {
			return "", fmt.Errorf("cardgen: draw pan digit: %w", err)
		}
		digits = append(digits, byte('0'+d))
	}
	check := checkDigit(string(digits))
	digits = append(digits, byte('0'+check))
	return string(digits), nil
}

// CVV generates a uniform random three-digit value in [100, 999].
func CVV() (string, error) {
	n, err := randInt(900)
	if err != nil {
		return "", fmt.Errorf("cardgen: draw cvv: %w", err)
	}
	return fmt.Sprintf("%d", 100+n), nil
}

// Expiry generates an expiry three years out with a uniform random month,
// rendered as MM/YY.
func Expiry(now time.Time) (string, error) {
	m, err := randInt(12)
	if err != nil {
		return "", fmt.Errorf("cardgen: draw expiry month: %w", err)
	}
	year := now.Year() + 3
	return fmt.Sprintf("%02d/%02d", m+1, year%100), nil
}

// Valid reports whether pan is exactly 16 digits, carries the brand
// prefix, and passes the Luhn checksum.
func Valid(pan string) bool {
	if len(pan) != PANLength || pan[0] != BrandDigit {
		return false
	}
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		if pan[i] < '0' || pan[i] > '9' {
			return false
		}
		d := int(pan[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// checkDigit computes the Luhn check digit for a digit-string prefix:
// scanning right to left, every second digit is doubled (minus nine when
// the doubling exceeds nine) before summing.
func checkDigit(prefix string) int {
	sum := 0
	double := true
	for i := len(prefix) - 1; i >= 0; i-- {
		d := int(prefix[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

func randInt(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
