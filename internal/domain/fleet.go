package domain

import "time"

type FleetStatus string

const (
	FleetStatusActive    FleetStatus = "active"
	FleetStatusSuspended FleetStatus = "suspended"
)

// Fleet is an aggregate of one owner and a deduplicated driver set.
//
// Invariants:
//   - Owner is immutable after creation.
//   - Drivers contains no duplicates.
//   - Every driver's User.FleetID equals this fleet's ID, and removal
//     clears that mirror field.
type Fleet struct {
	ID       FleetID
	Name     string
	MCNumber string
	Status   FleetStatus

	Owner   UserID
	Drivers []UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDriver reports whether id is in the driver set.
func (f Fleet) HasDriver(id UserID) bool {
	for _, d := range f.Drivers {
		if d == id {
			return true
		}
	}
	return false
}
