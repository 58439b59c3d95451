package model

import "time"

// Application review states.  The progression is
// pending -> under_review -> approved | rejected, with cancellation
// available to the applicant while the application has not been decided.
// Rejected and cancelled are terminal.
const (
	ApplicationStatusPending     = "pending"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusApproved    = "approved"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusCancelled   = "cancelled"
)

// Application is an exhibitor's request to participate in an expo.  One
// application may exist per (expo, exhibitor) pair, enforced by a unique
// index.
//
// Fields:
//
//	ID              – primary key identifier.
//	ExpoID          – target expo.
//	ExhibitorID     – user ID of the applicant.
//	ProfileID       – exhibitor company profile of the applicant.
//	BoothPreference – preferred booth category, optional.
//	StaffCount      – number of staff the exhibitor will bring.
//	SpecialRequirements – free-form requirements text.
//	Status          – one of the application status constants.
//	ReviewNotes     – organizer's notes recorded at decision time.
//	ReviewedBy      – user ID of the reviewer, set on decision.
//	ReviewedAt      – when the decision was made.
//	AssignedBoothID – booth reserved for this application, if any.
type Application struct {
	ID                  uint64     `json:"id"`
	ExpoID              uint64     `json:"expo_id"`
	ExhibitorID         uint64     `json:"exhibitor_id"`
	ProfileID           uint64     `json:"profile_id"`
	BoothPreference     *string    `json:"booth_preference,omitempty"`
	StaffCount          uint32     `json:"staff_count"`
	SpecialRequirements *string    `json:"special_requirements,omitempty"`
	Status              string     `json:"status"`
	ReviewNotes         *string    `json:"review_notes,omitempty"`
	ReviewedBy          *uint64    `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	AssignedBoothID     *uint64    `json:"assigned_booth_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Reviewable reports whether an organizer may still approve or reject the
// application.  Decided, cancelled and already-approved applications are
// not reviewable.
func (a *Application) Reviewable() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusUnderReview
}

// CancellableBy reports whether the given user may cancel the
// application.  Only the applicant can cancel, and only while the
// application has not been decided.
func (a *Application) CancellableBy(userID uint64) bool {
	return a.ExhibitorID == userID && a.Reviewable()
}

// Editable reports whether the applicant may still change the submitted
// details.  Edits are locked once review has started.
func (a *Application) Editable() bool {
	return a.Status == ApplicationStatusPending
}

// ValidDecision reports whether s is an acceptable review outcome.
func ValidDecision(s string) bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}
