package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

// CardResponse is the card view returned to its owner and the admin.
// This is a demo system with synthetic card data; the full PAN and CVV
// are returned deliberately.
type CardResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	PAN        string          `json:"pan"`
	MaskedPAN  string          `json:"masked_pan"`
	CVV        string          `json:"cvv"`
	Expiry     string          `json:"expiry"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Frozen     bool            `json:"frozen"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewCardResponse maps a domain card.
func NewCardResponse(c domain.Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		PAN:        domain.FormatPAN(c.PAN),
		MaskedPAN:  c.MaskedPAN(),
		CVV:        c.CVV,
		Expiry:     c.Expiry,
		HolderName: c.HolderName,
		Balance:    c.Balance,
		Frozen:     c.Frozen,
		CreatedAt:  c.CreatedAt,
	}
}

// NewCardResponses maps a slice of domain cards.
func NewCardResponses(cards []domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCardResponse(c))
	}
	return out
}

// IssueCardRequest is the admin direct-issuance payload.
type IssueCardRequest struct {
	UserID         string          `json:"user_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// TransferRequest is the balance transfer payload.
type TransferRequest struct {
	SourceCardID   string          `json:"source_card_id"`
	DestinationPAN string          `json:"destination_pan"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note"`
}

// FreezeRequest toggles a card's frozen flag.
type FreezeRequest struct {
	Frozen bool `json:"frozen"`
}

// PayoutRequest is the broadcast payout payload.
type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ApplicationResponse is the application view.
type ApplicationResponse struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"user_id"`
	UserName  string                   `json:"user_name"`
	UserEmail string                   `json:"user_email"`
	Status    domain.ApplicationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewApplicationResponse maps a domain application.
func NewApplicationResponse(a domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		UserName:  a.UserName,
		UserEmail: a.UserEmail,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
