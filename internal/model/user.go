package model

import "time"

// Roles recognised by the platform.  The role string is embedded in the
// JWT "role" claim and checked by the RequireRole middleware.  Admin
// accounts are provisioned out of band; self-registration only accepts
// attendee, exhibitor and organizer.
const (
	RoleAttendee  = "attendee"
	RoleExhibitor = "exhibitor"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// ValidSignupRole reports whether a role may be chosen at registration time.
func ValidSignupRole(role string) bool {
	switch role {
	case RoleAttendee, RoleExhibitor, RoleOrganizer:
		return true
	}
	return false
}

// User represents an application account as stored in the `users` table.
// The password hash is never serialized; handlers expose dedicated
// response types when user data leaves the API.
//
// Fields:
//
//	ID           – primary key identifier.
//	Email        – unique email address, stored lower-cased.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name.
//	LastName     – family name.
//	Phone        – optional phone number.
//	Role         – one of the role constants above.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token value is persisted.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
