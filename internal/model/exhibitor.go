package model

import "time"

// Company size brackets on an exhibitor profile.
const (
	CompanySizeStartup = "startup"
	CompanySizeSmall   = "small"
	CompanySizeMedium  = "medium"
	CompanySizeLarge   = "large"
)

// ValidCompanySize reports whether s is a known size bracket.
func ValidCompanySize(s string) bool {
	switch s {
	case CompanySizeStartup, CompanySizeSmall, CompanySizeMedium, CompanySizeLarge:
		return true
	}
	return false
}

// Exhibitor is the company profile a user with the exhibitor role keeps.
// Applications reference the profile so organizers review the company,
// not the account.
type Exhibitor struct {
	ID           uint64     `json:"id"`
	UserID       uint64     `json:"user_id"`
	CompanyName  string     `json:"company_name"`
	Description  *string    `json:"description,omitempty"`
	Industry     *string    `json:"industry,omitempty"`
	Website      *string    `json:"website,omitempty"`
	LogoURL      *string    `json:"logo_url,omitempty"`
	ContactPhone *string    `json:"contact_phone,omitempty"`
	CompanySize  *string    `json:"company_size,omitempty"`
	FoundedYear  *uint16    `json:"founded_year,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	Products     []Product  `json:"products,omitempty"`
	Documents    []Document `json:"documents,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Product is a catalogue entry owned by an exhibitor profile.
type Product struct {
	ID          string  `json:"id"`
	ExhibitorID uint64  `json:"-"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Document is a supporting file attached to an exhibitor profile,
// for instance a brochure or certification.
type Document struct {
	ID          string    `json:"id"`
	ExhibitorID uint64    `json:"-"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	DocType     *string   `json:"doc_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
