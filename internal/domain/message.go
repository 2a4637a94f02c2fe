package domain

import "time"

// MessageSender indicates which side of a conversation authored a message.
type MessageSender string

const (
	SenderUser  MessageSender = "USER"
	SenderAdmin MessageSender = "ADMIN"
)

// Message is one entry in a user's support conversation.
type Message struct {
	ID        string        `json:"id"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// InboxEntry summarizes one user's conversation for the admin inbox.
// There is at most one entry per user; it is updated in place on each
// user-authored message.
type InboxEntry struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	LastMessage string    `json:"last_message"`
	Unread      bool      `json:"unread"`
	UpdatedAt   time.Time `json:"updated_at"`
}
