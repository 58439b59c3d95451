package model

import "time"

// Booth availability states.  A booth is assignable to exactly one
// exhibitor at a time; reserved and occupied booths always carry an
// exhibitor reference, and releasing a booth clears both fields together.
const (
	BoothStatusAvailable   = "available"
	BoothStatusReserved    = "reserved"
	BoothStatusOccupied    = "occupied"
	BoothStatusMaintenance = "maintenance"
)

// Booth categories mirror the floor plan tiers sold to exhibitors.
const (
	BoothCategoryPremium  = "premium"
	BoothCategoryStandard = "standard"
	BoothCategoryBasic    = "basic"
	BoothCategoryCorner   = "corner"
	BoothCategoryIsland   = "island"
)

// ValidBoothCategory reports whether s is a recognised booth category.
func ValidBoothCategory(s string) bool {
	switch s {
	case BoothCategoryPremium, BoothCategoryStandard, BoothCategoryBasic,
		BoothCategoryCorner, BoothCategoryIsland:
		return true
	}
	return false
}

// Booth describes a physical space within an expo.  Booths are uniquely
// identified by their expo and booth number.
//
// Fields:
//
//	ID          – primary key identifier.
//	ExpoID      – expo to which this booth belongs.
//	BoothNumber – unique label per expo (e.g. "A-12").
//	Width, Height – dimensions in meters.
//	Area        – derived width * height, persisted for query convenience.
//	Floor       – floor designation.
//	Zone        – optional zone label.
//	PriceCents  – rental price in cents.
//	Category    – one of the booth category constants.
//	Status      – one of the booth status constants.
//	ExhibitorID – user ID of the reserving exhibitor, nil when available.
//	ReservedAt  – when the current reservation was made.
//	IsActive    – whether the booth is offered at all.
type Booth struct {
	ID          uint64     `json:"id"`
	ExpoID      uint64     `json:"expo_id"`
	BoothNumber string     `json:"booth_number"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Area        float64    `json:"area"`
	Floor       string     `json:"floor"`
	Zone        *string    `json:"zone,omitempty"`
	PriceCents  uint32     `json:"price_cents"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	ExhibitorID *uint64    `json:"exhibitor_id,omitempty"`
	ReservedAt  *time.Time `json:"reserved_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DerivedArea computes the booth area from its dimensions.  The stored
// Area column is always written from this value so the two never drift.
func DerivedArea(width, height float64) float64 {
	return width * height
}

// Reservable reports whether a booth can be handed to an exhibitor right
// now.  Only active, available booths qualify.
func (b *Booth) Reservable() bool {
	return b.IsActive && b.Status == BoothStatusAvailable
}

// Deletable reports whether the organizer may remove the booth.  Booths
// holding a reservation or an occupant must be released first.
func (b *Booth) Deletable() bool {
	return b.Status != BoothStatusReserved && b.Status != BoothStatusOccupied
}
