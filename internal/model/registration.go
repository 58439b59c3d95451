package model

import "time"

// Registration scopes.  An expo registration grants entry to the whole
// event; a session registration books a seat at a single programme item.
const (
	RegistrationTypeExpo    = "expo"
	RegistrationTypeSession = "session"
)

// Registration states.
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusConfirmed  = "confirmed"
	RegistrationStatusCancelled  = "cancelled"
	RegistrationStatusAttended   = "attended"
	RegistrationStatusNoShow     = "no_show"
)

// Payment methods accepted on a registration.
const (
	PaymentMethodCard     = "credit_card"
	PaymentMethodPaypal   = "paypal"
	PaymentMethodTransfer = "bank_transfer"
	PaymentMethodCash     = "cash"
	PaymentMethodFree     = "free"
)

// ValidPaymentMethod reports whether s is an accepted payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodTransfer,
		PaymentMethodCash, PaymentMethodFree:
		return true
	}
	return false
}

// Registration is an attendee's enrollment in an expo or a session.
// Uniqueness is enforced per (expo, attendee) for expo registrations and
// per (session, attendee) for session registrations.
type Registration struct {
	ID               uint64     `json:"id"`
	ExpoID           uint64     `json:"expo_id"`
	SessionID        *uint64    `json:"session_id,omitempty"`
	AttendeeID       uint64     `json:"attendee_id"`
	RegistrationType string     `json:"registration_type"`
	Status           string     `json:"status"`
	AmountCents      uint32     `json:"amount_cents"`
	Paid             bool       `json:"paid"`
	PaymentMethod    *string    `json:"payment_method,omitempty"`
	ConfirmationCode string     `json:"confirmation_code"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty"`
	Rating           *uint8     `json:"rating,omitempty"`
	Comments         *string    `json:"comments,omitempty"`
	FeedbackAt       *time.Time `json:"feedback_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Cancellable reports whether the attendee may still cancel.  Attendance
// locks the registration.
func (r *Registration) Cancellable() bool {
	return r.Status != RegistrationStatusAttended
}

// CheckInAllowed reports whether the registration can transition to
// attended.  Cancelled registrations cannot check in.
func (r *Registration) CheckInAllowed() bool {
	return r.Status != RegistrationStatusCancelled
}

// FeedbackAllowed reports whether feedback may be submitted.  Feedback
// requires attendance.
func (r *Registration) FeedbackAllowed() bool {
	return r.Status == RegistrationStatusAttended
}

// ValidRating reports whether the rating falls on the 1..5 scale.
func ValidRating(rating uint8) bool {
	return rating >= 1 && rating <= 5
}

// CountsTowardCapacity reports whether a registration with the given
// status consumes a seat when a session's capacity is evaluated.
func CountsTowardCapacity(status string) bool {
	return status == RegistrationStatusRegistered || status == RegistrationStatusConfirmed
}

// SessionHasCapacity evaluates the capacity rule for a session
// registration: with maxAttendees nil there is no cap, otherwise the
// count of seat-consuming registrations must stay strictly below the cap
// for one more to fit.
func SessionHasCapacity(current uint32, maxAttendees *uint32) bool {
	if maxAttendees == nil {
		return true
	}
	return current < *maxAttendees
}
