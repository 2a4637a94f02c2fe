package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Card models a virtual payment card. The PAN is globally unique and
// Luhn-valid; HolderName is a copy of the owner's name at issuance time.
type Card struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	PAN        string          `json:"pan"`
	CVV        string          `json:"cvv"`
	Expiry     string          `json:"expiry"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Frozen     bool            `json:"frozen"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MaskedPAN renders the PAN with all but the last four digits hidden.
func (c *Card) MaskedPAN() string {
	return MaskPAN(c.PAN)
}

// MaskPAN hides all but the last four digits of a PAN.
func MaskPAN(pan string) string {
	if len(pan) < 4 {
		return pan
	}
	return "**** **** **** " + pan[len(pan)-4:]
}

// FormatPAN groups a PAN into blocks of four digits for display.
func FormatPAN(pan string) string {
	var b strings.Builder
	for i, r := range pan {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
