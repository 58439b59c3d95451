// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationEvent is published whenever a workflow milestone should
// surface to a user: an application decision, a booth assignment, a
// registration confirmation. It carries enough information for the
// consumer to write the in-app notification without querying back into
// the request path.
type NotificationEvent struct {
	UserID     uint64 `json:"user_id"`
	SenderID   uint64 `json:"sender_id,omitempty"`
	Event      string `json:"event"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ExpoID     uint64 `json:"expo_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Event names published by the handlers.
const (
	EventApplicationDecided  = "application.decided"
	EventBoothAssigned       = "booth.assigned"
	EventBoothReleased       = "booth.released"
	EventRegistrationCreated = "registration.created"
	EventRegistrationCheckin = "registration.checked_in"
	EventAppointmentDecided  = "appointment.decided"
)
