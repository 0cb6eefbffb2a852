package loads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/clock"
	"github.com/scc-freight/freight-api/internal/ports/out/loadrepo"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

type Service struct {
	loads loadrepo.Repository
	users userrepo.Repository
	clock clock.Clock

	newLoadID func() domain.LoadID
}

func NewService(loadsRepo loadrepo.Repository, usersRepo userrepo.Repository, clk clock.Clock) *Service {
	return &Service{
		loads: loadsRepo,
		users: usersRepo,
		clock: clk,
		newLoadID: func() domain.LoadID {
			return domain.LoadID(uuid.NewString())
		},
	}
}

// SetNewLoadIDForTest overrides load ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewLoadIDForTest(fn func() domain.LoadID) {
	if fn != nil {
		s.newLoadID = fn
	}
}

// Post creates a load owned by the caller with status posted.
func (s *Service) Post(ctx context.Context, shipper domain.UserID, in PostLoadInput) (domain.Load, error) {
	details := map[string]any{}
	if strings.TrimSpace(in.Origin) == "" {
		details["origin"] = "must be non-empty"
	}
	if strings.TrimSpace(in.Destination) == "" {
		details["destination"] = "must be non-empty"
	}
	if strings.TrimSpace(in.CargoType) == "" {
		details["cargoType"] = "must be non-empty"
	}
	if in.Weight <= 0 {
		details["weight"] = "must be > 0"
	}
	if in.Price <= 0 {
		details["price"] = "must be > 0"
	}
	if in.PickupDate.IsZero() {
		details["pickupDate"] = "required"
	}
	if in.DeliveryDate != nil && in.DeliveryDate.Before(in.PickupDate) {
		details["deliveryDate"] = "must be on or after pickupDate"
	}
	if len(details) > 0 {
		return domain.Load{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid load", Details: details}
	}

	now := s.clock.Now().UTC()
	l := loadrepo.Load{
		ID:           s.newLoadID(),
		Shipper:      shipper,
		Origin:       strings.TrimSpace(in.Origin),
		Destination:  strings.TrimSpace(in.Destination),
		CargoType:    strings.TrimSpace(in.CargoType),
		Weight:       in.Weight,
		Price:        in.Price,
		PickupDate:   in.PickupDate.UTC(),
		DeliveryDate: cloneTimePtr(in.DeliveryDate),
		Status:       domain.LoadStatusPosted,
		Notes:        cloneStringPtr(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.loads.Create(ctx, l); err != nil {
		if errors.Is(err, loadrepo.ErrAlreadyExists) {
			return domain.Load{}, &Error{Status: 409, Code: "LOAD_ID_CONFLICT", Message: "load id conflict"}
		}
		return domain.Load{}, err
	}
	return toDomainLoad(l), nil
}

// Get returns a single load.
func (s *Service) Get(ctx context.Context, id domain.LoadID) (domain.Load, error) {
	l, err := s.loads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, loadrepo.ErrNotFound) {
			return domain.Load{}, &Error{Status: 404, Code: "LOAD_NOT_FOUND", Message: "load not found"}
		}
		return domain.Load{}, err
	}
	return toDomainLoad(l), nil
}

// List returns every load on the board, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Load, error) {
	ls, err := s.loads.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainLoads(ls), nil
}

// ListMine returns the caller's own posted loads, newest first.
func (s *Service) ListMine(ctx context.Context, shipper domain.UserID) ([]domain.Load, error) {
	ls, err := s.loads.ListByShipper(ctx, shipper)
	if err != nil {
		return nil, err
	}
	return toDomainLoads(ls), nil
}

// UpdateStatus moves a load along its lifecycle. The repository applies the
// lifecycle graph atomically, so an illegal edge fails without a write even
// when two dispatchers race. A carrier may only be attached on the
// transition into assigned and must reference an existing user.
func (s *Service) UpdateStatus(ctx context.Context, id domain.LoadID, in UpdateStatusInput) (domain.Load, error) {
	next, ok := domain.ParseLoadStatus(in.Status)
	if !ok {
		return domain.Load{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "unknown status"}}
	}

	var carrier *domain.UserID
	if in.CarrierID != nil {
		if next != domain.LoadStatusAssigned {
			return domain.Load{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid carrierId", Details: map[string]any{"carrierId": "only allowed when assigning"}}
		}
		if _, err := s.users.GetByID(ctx, *in.CarrierID); err != nil {
			if errors.Is(err, userrepo.ErrNotFound) {
				return domain.Load{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid carrierId", Details: map[string]any{"carrierId": "user not found"}}
			}
			return domain.Load{}, err
		}
		carrier = in.CarrierID
	}

	l, err := s.loads.UpdateStatus(ctx, id, next, carrier, s.clock.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, loadrepo.ErrNotFound):
			return domain.Load{}, &Error{Status: 404, Code: "LOAD_NOT_FOUND", Message: "load not found"}
		case errors.Is(err, loadrepo.ErrInvalidTransition):
			return domain.Load{}, &Error{
				Status:  422,
				Code:    "INVALID_TRANSITION",
				Message: "load status transition is not allowed",
				Details: map[string]any{"status": string(next)},
			}
		}
		return domain.Load{}, err
	}
	return toDomainLoad(l), nil
}

// Delete removes a load. Only the shipper who posted it may delete it;
// admins may delete any load.
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id domain.LoadID) error {
	l, err := s.loads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, loadrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "LOAD_NOT_FOUND", Message: "load not found"}
		}
		return err
	}
	if caller.Role != domain.RoleAdmin && l.Shipper != caller.UserID {
		return &Error{Status: 403, Code: "NOT_LOAD_OWNER", Message: "only the posting shipper may delete this load"}
	}
	if err := s.loads.Delete(ctx, id); err != nil {
		if errors.Is(err, loadrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "LOAD_NOT_FOUND", Message: "load not found"}
		}
		return err
	}
	return nil
}

func toDomainLoads(ls []loadrepo.Load) []domain.Load {
	out := make([]domain.Load, 0, len(ls))
	for _, l := range ls {
		out = append(out, toDomainLoad(l))
	}
	return out
}

func toDomainLoad(l loadrepo.Load) domain.Load {
	return domain.Load{
		ID:           l.ID,
		Shipper:      l.Shipper,
		Carrier:      cloneUserIDPtr(l.Carrier),
		Origin:       l.Origin,
		Destination:  l.Destination,
		CargoType:    l.CargoType,
		Weight:       l.Weight,
		Price:        l.Price,
		PickupDate:   l.PickupDate,
		DeliveryDate: cloneTimePtr(l.DeliveryDate),
		Status:       l.Status,
		Notes:        cloneStringPtr(l.Notes),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUserIDPtr(p *domain.UserID) *domain.UserID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
