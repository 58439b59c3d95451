package model

import "time"

// Notification is an in-app notice produced by the dispatch consumer
// when workflow events fire (application decisions, booth assignments,
// registration confirmations).
type Notification struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	SenderID  *uint64   `json:"sender_id,omitempty"`
	ExpoID    *uint64   `json:"expo_id,omitempty"`
	Event     string    `json:"event"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
