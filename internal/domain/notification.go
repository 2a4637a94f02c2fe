package domain

import "time"

// Notification is an in-app notice delivered to a user's pool or to the
// admin-wide pool. Notifications are appended unread and acknowledged only
// by a pool-wide mark-all-read.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
