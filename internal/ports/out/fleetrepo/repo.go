package fleetrepo

import (
	"context"
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
)

// Fleet is the persistence shape used by the fleet repository.
type Fleet struct {
	ID       domain.FleetID
	Name     string
	MCNumber string
	Status   domain.FleetStatus

	Owner   domain.UserID
	Drivers []domain.UserID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted fleets.
//
// Every mutation that touches the driver set is atomic with respect to the
// User.FleetID mirror: implementations perform the fleet write and the
// mirror write in a single transaction (postgres) or a single critical
// section (memory). The driver set is deduplicated by the store itself so
// the invariant holds even under concurrent AddDriver calls.
//
// List returns fleets ordered by CreatedAt descending (newest first).
type Repository interface {
	// Create persists a fleet and sets the owner's membership mirror.
	// Fleet names are unique (case-sensitive exact match).
	Create(ctx context.Context, f Fleet) error

	GetByID(ctx context.Context, id domain.FleetID) (Fleet, error)
	GetByOwner(ctx context.Context, owner domain.UserID) (Fleet, error)

	// GetByMember returns the fleet where user is the owner or a driver.
	GetByMember(ctx context.Context, user domain.UserID) (Fleet, error)

	List(ctx context.Context) ([]Fleet, error)

	// AddDriver appends driver to the fleet's driver set and mirrors the
	// membership onto the user record. Fails ErrDriverAlreadyInFleet when
	// the driver is already in this fleet's set, and ErrDriverInOtherFleet
	// when the driver's mirror points at a different fleet.
	AddDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (Fleet, error)

	// RemoveDriver removes driver from the set and clears the mirror.
	// Removing a non-member is a no-op that still succeeds.
	RemoveDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (Fleet, error)
}
