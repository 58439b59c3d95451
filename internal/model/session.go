package model

import "time"

// Session lifecycle states.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusOngoing   = "ongoing"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// ValidSessionStatus reports whether s is a recognised session status.
func ValidSessionStatus(s string) bool {
	switch s {
	case SessionStatusScheduled, SessionStatusOngoing,
		SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// Session types offered on an expo programme.
const (
	SessionTypeKeynote    = "keynote"
	SessionTypeWorkshop   = "workshop"
	SessionTypeSeminar    = "seminar"
	SessionTypePanel      = "panel"
	SessionTypeNetworking = "networking"
	SessionTypeTour       = "exhibition_tour"
	SessionTypeBreak      = "break"
)

// ValidSessionType reports whether s is a recognised session type.
func ValidSessionType(s string) bool {
	switch s {
	case SessionTypeKeynote, SessionTypeWorkshop, SessionTypeSeminar,
		SessionTypePanel, SessionTypeNetworking, SessionTypeTour, SessionTypeBreak:
		return true
	}
	return false
}

// Session represents a scheduled programme item within an expo.  Its time
// window must fall inside the expo's date range.
type Session struct {
	ID                   uint64     `json:"id"`
	ExpoID               uint64     `json:"expo_id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	SessionType          string     `json:"session_type"`
	StartsAt             time.Time  `json:"starts_at"`
	EndsAt               time.Time  `json:"ends_at"`
	Room                 string     `json:"room"`
	Capacity             uint32     `json:"capacity"`
	MaxAttendees         *uint32    `json:"max_attendees,omitempty"`
	RegistrationRequired bool       `json:"registration_required"`
	FeeCents             uint32     `json:"fee_cents"`
	Status               string     `json:"status"`
	Speakers             []Speaker  `json:"speakers,omitempty"`
	Materials            []Material `json:"materials,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Speaker is an owned child record of a session, keyed by a generated
// identifier so individual speakers can be updated or removed.
type Speaker struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Title   *string `json:"title,omitempty"`
	Company *string `json:"company,omitempty"`
	Bio     *string `json:"bio,omitempty"`
}

// Material types attachable to a session.
const (
	MaterialTypePresentation = "presentation"
	MaterialTypeHandout      = "handout"
	MaterialTypeResource     = "resource"
	MaterialTypeRecording    = "recording"
)

// ValidMaterialType reports whether s is a recognised material type.
func ValidMaterialType(s string) bool {
	switch s {
	case MaterialTypePresentation, MaterialTypeHandout,
		MaterialTypeResource, MaterialTypeRecording:
		return true
	}
	return false
}

// Material is an owned child record pointing at session collateral.
type Material struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	MaterialType string `json:"material_type"`
}

// ValidSessionWindow checks that the session time range is well formed
// and contained in the expo's date range.
func ValidSessionWindow(startsAt, endsAt time.Time, expo *Expo) bool {
	if !endsAt.After(startsAt) {
		return false
	}
	return !startsAt.Before(expo.StartDate) && !endsAt.After(expo.EndDate)
}
