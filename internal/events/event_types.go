package events

import (
	"time"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventCardIssued           EventType = "card_issued"
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationDecided   EventType = "application_decided"
	EventTransferCompleted    EventType = "transfer_completed"
	EventCardFreezeChanged    EventType = "card_freeze_changed"
	EventPayoutBroadcast      EventType = "payout_broadcast"
	EventMessagePosted        EventType = "message_posted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type   domain.SubjectType `json:"type"`
	UserID *string            `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CardIssuedPayload payload.
type CardIssuedPayload struct {
	CardID         string `json:"card_id"`
	MaskedPAN      string `json:"masked_pan"`
	InitialBalance string `json:"initial_balance"`
}

// ApplicationDecidedPayload payload.
type ApplicationDecidedPayload struct {
	ApplicationID string                   `json:"application_id"`
	Status        domain.ApplicationStatus `json:"status"`
}

// TransferCompletedPayload payload.
type TransferCompletedPayload struct {
	SourceCardID      string `json:"source_card_id"`
	DestinationCardID string `json:"destination_card_id"`
	Amount            string `json:"amount"`
	Note              string `json:"note,omitempty"`
}

// CardFreezeChangedPayload payload.
type CardFreezeChangedPayload struct {
	CardIDs []string `json:"card_ids"`
	Frozen  bool     `json:"frozen"`
}

// PayoutBroadcastPayload payload.
type PayoutBroadcastPayload struct {
	Amount        string `json:"amount"`
	UsersAffected int    `json:"users_affected"`
}

// MessagePostedPayload payload.
type MessagePostedPayload struct {
	MessageID   string               `json:"message_id"`
	Sender      domain.MessageSender `json:"sender"`
	BodyPreview string               `json:"body_preview"`
}
