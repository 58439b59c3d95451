package model

import "time"

// Message lifecycle states.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusReplied   = "replied"
	MessageStatusArchived  = "archived"
)

// Message categories.  The category decides which side-workflows apply:
// appointment_request messages carry an appointment block the recipient
// can act on.
const (
	MessageTypeGeneral            = "general"
	MessageTypeApplicationUpdate  = "application_update"
	MessageTypeBoothAssignment    = "booth_assignment"
	MessageTypeAppointmentRequest = "appointment_request"
	MessageTypeAnnouncement       = "announcement"
	MessageTypeSupport            = "support"
)

// Appointment states on an appointment_request message.
const (
	AppointmentStatusPending     = "pending"
	AppointmentStatusAccepted    = "accepted"
	AppointmentStatusDeclined    = "declined"
	AppointmentStatusRescheduled = "rescheduled"
	AppointmentStatusCompleted   = "completed"
)

// Message priorities.
const (
	MessagePriorityLow    = "low"
	MessagePriorityNormal = "normal"
	MessagePriorityHigh   = "high"
	MessagePriorityUrgent = "urgent"
)

// ValidMessageType reports whether t is a known message category.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeGeneral, MessageTypeApplicationUpdate, MessageTypeBoothAssignment,
		MessageTypeAppointmentRequest, MessageTypeAnnouncement, MessageTypeSupport:
		return true
	}
	return false
}

// ValidMessagePriority reports whether p is a known priority level.
func ValidMessagePriority(p string) bool {
	switch p {
	case MessagePriorityLow, MessagePriorityNormal, MessagePriorityHigh, MessagePriorityUrgent:
		return true
	}
	return false
}

// ValidAppointmentStatus reports whether s is an actionable appointment
// decision.  Pending is the initial state and never set by hand.
func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentStatusAccepted, AppointmentStatusDeclined,
		AppointmentStatusRescheduled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Message is one entry in a threaded conversation between two users,
// optionally tied to an expo, application or booth.
type Message struct {
	ID                   uint64     `json:"id"`
	SenderID             uint64     `json:"sender_id"`
	RecipientID          uint64     `json:"recipient_id"`
	ExpoID               *uint64    `json:"expo_id,omitempty"`
	Subject              string     `json:"subject"`
	Body                 string     `json:"body"`
	MessageType          string     `json:"message_type"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	ParentMessageID      *uint64    `json:"parent_message_id,omitempty"`
	RelatedApplicationID *uint64    `json:"related_application_id,omitempty"`
	RelatedBoothID       *uint64    `json:"related_booth_id,omitempty"`
	ReadAt               *time.Time `json:"read_at,omitempty"`
	AppointmentAt        *time.Time `json:"appointment_at,omitempty"`
	AppointmentPlace     *string    `json:"appointment_place,omitempty"`
	AppointmentStatus    *string    `json:"appointment_status,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ReplyRecipient resolves who a reply from senderID should address: the
// other participant of the parent message.
func ReplyRecipient(parent *Message, senderID uint64) uint64 {
	if parent.SenderID == senderID {
		return parent.RecipientID
	}
	return parent.SenderID
}

// ParticipantOf reports whether userID is on either end of the message.
func (m *Message) ParticipantOf(userID uint64) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// MarkReadOnView reports whether a fetch by userID should flip the
// message to read.  Only the recipient's view counts, and only from the
// delivered state.
func (m *Message) MarkReadOnView(userID uint64) bool {
	return m.RecipientID == userID && m.Status == MessageStatusDelivered
}

// AppointmentActionable reports whether userID may set the appointment
// status.  Only the recipient of an appointment_request decides.
func (m *Message) AppointmentActionable(userID uint64) bool {
	return m.MessageType == MessageTypeAppointmentRequest && m.RecipientID == userID
}
