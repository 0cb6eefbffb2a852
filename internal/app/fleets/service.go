package fleets

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/clock"
	"github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

type Service struct {
	fleets fleetrepo.Repository
	users  userrepo.Repository
	clock  clock.Clock

	newFleetID func() domain.FleetID
}

func NewService(fleetsRepo fleetrepo.Repository, usersRepo userrepo.Repository, clk clock.Clock) *Service {
	return &Service{
		fleets: fleetsRepo,
		users:  usersRepo,
		clock:  clk,
		newFleetID: func() domain.FleetID {
			return domain.FleetID(uuid.NewString())
		},
	}
}

// SetNewFleetIDForTest overrides fleet ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewFleetIDForTest(fn func() domain.FleetID) {
	if fn != nil {
		s.newFleetID = fn
	}
}

// Create registers a fleet owned by the caller. A user owns or belongs to
// at most one fleet, so the caller must not already be a member anywhere.
func (s *Service) Create(ctx context.Context, caller domain.UserID, in CreateFleetInput) (domain.Fleet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Fleet{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	mc := strings.TrimSpace(in.MCNumber)
	if mc == "" {
		return domain.Fleet{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid mcNumber", Details: map[string]any{"mcNumber": "must be non-empty"}}
	}

	if _, err := s.fleets.GetByMember(ctx, caller); err == nil {
		return domain.Fleet{}, &Error{Status: 400, Code: "ALREADY_IN_FLEET", Message: "caller already belongs to a fleet"}
	} else if !errors.Is(err, fleetrepo.ErrNotFound) {
		return domain.Fleet{}, err
	}

	now := s.clock.Now().UTC()
	f := fleetrepo.Fleet{
		ID:        s.newFleetID(),
		Name:      name,
		MCNumber:  mc,
		Status:    domain.FleetStatusActive,
		Owner:     caller,
		Drivers:   []domain.UserID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.fleets.Create(ctx, f); err != nil {
		if errors.Is(err, fleetrepo.ErrNameTaken) {
			return domain.Fleet{}, &Error{Status: 400, Code: "FLEET_NAME_TAKEN", Message: "a fleet with this name already exists"}
		}
		return domain.Fleet{}, err
	}
	return toDomainFleet(f), nil
}

// AddDriver places a driver into the caller's fleet. The repository applies
// the membership write and the user mirror atomically; this layer validates
// the target user first so a bad ID fails before any write.
func (s *Service) AddDriver(ctx context.Context, caller domain.UserID, driver domain.UserID) (domain.Fleet, error) {
	f, err := s.fleets.GetByOwner(ctx, caller)
	if err != nil {
		if errors.Is(err, fleetrepo.ErrNotFound) {
			return domain.Fleet{}, &Error{Status: 404, Code: "FLEET_NOT_FOUND", Message: "caller does not own a fleet"}
		}
		return domain.Fleet{}, err
	}

	// The owner is a member already; absorbing them into the driver set
	// would let a later removal clear their ownership mirror.
	if driver == f.Owner {
		return domain.Fleet{}, &Error{Status: 400, Code: "DRIVER_ALREADY_IN_FLEET", Message: "the fleet owner is already a member of the fleet"}
	}

	if _, err := s.users.GetByID(ctx, driver); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.Fleet{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "driver not found"}
		}
		return domain.Fleet{}, err
	}

	updated, err := s.fleets.AddDriver(ctx, f.ID, driver)
	if err != nil {
		switch {
		case errors.Is(err, fleetrepo.ErrDriverAlreadyInFleet):
			return domain.Fleet{}, &Error{Status: 400, Code: "DRIVER_ALREADY_IN_FLEET", Message: "driver is already in this fleet"}
		case errors.Is(err, fleetrepo.ErrDriverInOtherFleet):
			return domain.Fleet{}, &Error{Status: 400, Code: "DRIVER_IN_OTHER_FLEET", Message: "driver belongs to another fleet"}
		case errors.Is(err, fleetrepo.ErrNotFound):
			return domain.Fleet{}, &Error{Status: 404, Code: "FLEET_NOT_FOUND", Message: "fleet not found"}
		}
		return domain.Fleet{}, err
	}
	return toDomainFleet(updated), nil
}

// RemoveDriver takes a driver out of the caller's fleet. Removing a user
// who is not in the fleet succeeds without changes.
func (s *Service) RemoveDriver(ctx context.Context, caller domain.UserID, driver domain.UserID) (domain.Fleet, error) {
	f, err := s.fleets.GetByOwner(ctx, caller)
	if err != nil {
		if errors.Is(err, fleetrepo.ErrNotFound) {
			return domain.Fleet{}, &Error{Status: 404, Code: "FLEET_NOT_FOUND", Message: "caller does not own a fleet"}
		}
		return domain.Fleet{}, err
	}

	updated, err := s.fleets.RemoveDriver(ctx, f.ID, driver)
	if err != nil {
		if errors.Is(err, fleetrepo.ErrNotFound) {
			return domain.Fleet{}, &Error{Status: 404, Code: "FLEET_NOT_FOUND", Message: "fleet not found"}
		}
		return domain.Fleet{}, err
	}
	return toDomainFleet(updated), nil
}

// MyFleet returns the fleet the caller owns or drives for.
func (s *Service) MyFleet(ctx context.Context, caller domain.UserID) (domain.Fleet, error) {
	f, err := s.fleets.GetByMember(ctx, caller)
	if err != nil {
		if errors.Is(err, fleetrepo.ErrNotFound) {
			return domain.Fleet{}, &Error{Status: 404, Code: "FLEET_NOT_FOUND", Message: "caller does not belong to a fleet"}
		}
		return domain.Fleet{}, err
	}
	return toDomainFleet(f), nil
}

// List returns all fleets, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Fleet, error) {
	fs, err := s.fleets.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Fleet, 0, len(fs))
	for _, f := range fs {
		out = append(out, toDomainFleet(f))
	}
	return out, nil
}

func toDomainFleet(f fleetrepo.Fleet) domain.Fleet {
	return domain.Fleet{
		ID:        f.ID,
		Name:      f.Name,
		MCNumber:  f.MCNumber,
		Status:    f.Status,
		Owner:     f.Owner,
		Drivers:   append([]domain.UserID(nil), f.Drivers...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
