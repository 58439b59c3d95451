package model

import "time"

// Expo lifecycle states.  Draft expos are only visible to their organizer;
// published and active expos accept registrations; completed and cancelled
// expos are closed to both applications and registrations.
const (
	ExpoStatusDraft     = "draft"
	ExpoStatusPublished = "published"
	ExpoStatusActive    = "active"
	ExpoStatusCompleted = "completed"
	ExpoStatusCancelled = "cancelled"
)

// ValidExpoStatus reports whether s is a recognised expo status value.
func ValidExpoStatus(s string) bool {
	switch s {
	case ExpoStatusDraft, ExpoStatusPublished, ExpoStatusActive,
		ExpoStatusCompleted, ExpoStatusCancelled:
		return true
	}
	return false
}

// Expo represents a time-boxed exhibition event owned by an organizer.
// It corresponds to a row in the `expos` table.
//
// Fields:
//
//	ID                   – primary key identifier.
//	OrganizerID          – user ID of the owning organizer.
//	Title                – display title.
//	Description          – long description.
//	Theme                – optional theme line.
//	StartDate, EndDate   – event date range; sessions must fall inside it.
//	Venue, Address, City, Country – location of the event.
//	Status               – one of the expo status constants.
//	MaxExhibitors        – cap on approved exhibitors.
//	MaxAttendees         – cap on expo-level registrations.
//	RegistrationDeadline – optional cutoff for attendee registration.
//	ExhibitorFeeCents    – application fee in cents.
//	AttendeeFeeCents     – attendee registration fee in cents.
//	IsPublic             – whether the expo shows up in public browse.
type Expo struct {
	ID                   uint64     `json:"id"`
	OrganizerID          uint64     `json:"organizer_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Theme                *string    `json:"theme,omitempty"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	Venue                string     `json:"venue"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	Country              string     `json:"country"`
	Status               string     `json:"status"`
	MaxExhibitors        uint32     `json:"max_exhibitors"`
	MaxAttendees         uint32     `json:"max_attendees"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	ExhibitorFeeCents    uint32     `json:"exhibitor_fee_cents"`
	AttendeeFeeCents     uint32     `json:"attendee_fee_cents"`
	IsPublic             bool       `json:"is_public"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AcceptingApplications reports whether exhibitors may still apply.
// Completed and cancelled expos reject new applications.
func (e *Expo) AcceptingApplications() bool {
	return e.Status != ExpoStatusCompleted && e.Status != ExpoStatusCancelled
}

// OpenForRegistration reports whether attendees may register.  Only
// published and active expos are open.
func (e *Expo) OpenForRegistration() bool {
	return e.Status == ExpoStatusPublished || e.Status == ExpoStatusActive
}

// TogglePublish returns the status an expo moves to when the organizer
// hits the publish endpoint: published flips back to draft, anything
// else becomes published.
func (e *Expo) TogglePublish() string {
	if e.Status == ExpoStatusPublished {
		return ExpoStatusDraft
	}
	return ExpoStatusPublished
}
