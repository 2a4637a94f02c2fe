package dto

import (
	"time"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

// PostMessageRequest payload for sending a message.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse is one conversation entry.
type MessageResponse struct {
	ID        string               `json:"id"`
	Sender    domain.MessageSender `json:"sender"`
	Content   string               `json:"content"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewMessageResponse maps one message.
func NewMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// NewMessageResponses maps a conversation.
func NewMessageResponses(msgs []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

// InboxEntryResponse is one admin inbox row.
type InboxEntryResponse struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	LastMessage string    `json:"last_message"`
	Unread      bool      `json:"unread"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NotificationResponse is one notification entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponses maps a notification pool.
func NewNotificationResponses(notifs []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
