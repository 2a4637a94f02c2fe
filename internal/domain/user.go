package domain

import "time"

// User is the domain model for end-users who hold virtual cards.
// Messages and notifications belong to the user and stay in arrival order.
type User struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"password_hash"`
	Messages      []Message      `json:"messages"`
	Notifications []Notification `json:"notifications"`
	CreatedAt     time.Time      `json:"created_at"`
}
