// Package queue defines message payloads exchanged over the message broker
// along with their publisher and background consumer.
package queue

// UserRegisteredEvent is published after a successful registration. It
// carries enough for downstream consumers to log, notify or feed analytics
// without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}
