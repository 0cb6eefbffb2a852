package loadrepo

import (
	"context"
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
)

// Load is the persistence shape used by the load repository.
type Load struct {
	ID      domain.LoadID
	Shipper domain.UserID
	Carrier *domain.UserID

	Origin      string
	Destination string
	CargoType   string
	Weight      float64
	Price       float64

	PickupDate   time.Time
	DeliveryDate *time.Time

	Status domain.LoadStatus
	Notes  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted loads.
//
// List methods return loads ordered by CreatedAt descending (newest first).
type Repository interface {
	Create(ctx context.Context, l Load) error

	GetByID(ctx context.Context, id domain.LoadID) (Load, error)

	List(ctx context.Context) ([]Load, error)
	ListByShipper(ctx context.Context, shipper domain.UserID) ([]Load, error)

	// UpdateStatus performs an atomic read-modify-write of the load's
	// status, applying the lifecycle graph under the store's own lock or
	// transaction so concurrent transitions cannot interleave. An illegal
	// edge fails ErrInvalidTransition and leaves the load unchanged.
	// carrier, when non-nil, is recorded as the assigned carrier alongside
	// the transition (assignment is the only caller that passes it).
	UpdateStatus(ctx context.Context, id domain.LoadID, next domain.LoadStatus, carrier *domain.UserID, now time.Time) (Load, error)

	Delete(ctx context.Context, id domain.LoadID) error
}
