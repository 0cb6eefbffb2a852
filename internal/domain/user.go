package domain

import "time"

// Role is a user's single marketplace role. Roles are a closed, flat set:
// there is no hierarchy, and an operation's allowed roles are always an
// explicit set literal (admin does not implicitly gain carrier-only routes).
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCarrier    Role = "carrier"
	RoleDispatcher Role = "dispatcher"
	RoleShipper    Role = "shipper"
	RoleFleetOwner Role = "fleet_owner"
)

// DefaultRole is assigned when a registration omits the role.
const DefaultRole = RoleCarrier

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleCarrier, RoleDispatcher, RoleShipper, RoleFleetOwner:
		return Role(s), true
	}
	return "", false
}

// Principal is the authenticated identity and role resolved for one request.
// It is derived from verified token claims (and, on re-fetch-tier routes,
// refreshed from the live user record) and never persisted.
type Principal struct {
	UserID UserID
	Email  string
	Role   Role
}

// Profile holds the cosmetic account fields carried from registration and
// profile updates. None of these influence authorization or lifecycle
// decisions.
type Profile struct {
	CompanyName   *string
	ContactNumber *string
	Address       *string
	Bio           *string
}

// User is the domain representation of an account.
type User struct {
	ID    UserID
	Name  string
	Email string
	Role  Role

	// Verified flips true exactly once, by verification-link consumption.
	Verified bool
	Active   bool

	// FleetID mirrors fleet membership and is written only by the fleet
	// subsystem; nil means the user belongs to no fleet.
	FleetID *FleetID

	Profile Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}
