package fleetrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of fleetrepo.Repository.
// It is safe for concurrent use.
//
// The repo holds its own mutex across every membership mutation, including
// the mirror write into the user repository. All mirror writes flow through
// this repo, so the mutex gives the fleet write and the mirror write a
// single serialization point, the memory analogue of the postgres
// transaction.
type Repo struct {
	mu    sync.RWMutex
	byID  map[domain.FleetID]fleetrepo.Fleet
	users userrepo.Repository
}

func NewRepo(users userrepo.Repository) *Repo {
	return &Repo{
		byID:  make(map[domain.FleetID]fleetrepo.Fleet),
		users: users,
	}
}

func (r *Repo) Create(ctx context.Context, f fleetrepo.Fleet) error {
	if f.ID == "" {
		return fleetrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[f.ID]; ok {
		return fleetrepo.ErrAlreadyExists
	}
	for _, other := range r.byID {
		if other.Name == f.Name {
			return fleetrepo.ErrNameTaken
		}
	}
	cp := cloneFleet(f)
	r.byID[f.ID] = cp
	id := f.ID
	if err := r.users.SetFleetID(ctx, f.Owner, &id); err != nil {
		delete(r.byID, f.ID)
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.FleetID) (fleetrepo.Fleet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	if !ok {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	return cloneFleet(f), nil
}

func (r *Repo) GetByOwner(ctx context.Context, owner domain.UserID) (fleetrepo.Fleet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.byID {
		if f.Owner == owner {
			return cloneFleet(f), nil
		}
	}
	return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
}

func (r *Repo) GetByMember(ctx context.Context, user domain.UserID) (fleetrepo.Fleet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.byID {
		if f.Owner == user || hasDriver(f, user) {
			return cloneFleet(f), nil
		}
	}
	return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
}

func (r *Repo) List(ctx context.Context) ([]fleetrepo.Fleet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]fleetrepo.Fleet, 0, len(r.byID))
	for _, f := range r.byID {
		out = append(out, cloneFleet(f))
	}
	sortFleets(out)
	return out, nil
}

func (r *Repo) AddDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (fleetrepo.Fleet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[fleet]
	if !ok {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	if f.Owner == driver || hasDriver(f, driver) {
		return fleetrepo.Fleet{}, fleetrepo.ErrDriverAlreadyInFleet
	}
	u, err := r.users.GetByID(ctx, driver)
	if err != nil {
		return fleetrepo.Fleet{}, err
	}
	if u.FleetID != nil && *u.FleetID != fleet {
		return fleetrepo.Fleet{}, fleetrepo.ErrDriverInOtherFleet
	}

	f.Drivers = append(f.Drivers, driver)
	id := fleet
	if err := r.users.SetFleetID(ctx, driver, &id); err != nil {
		return fleetrepo.Fleet{}, err
	}
	r.byID[fleet] = cloneFleet(f)
	return cloneFleet(f), nil
}

func (r *Repo) RemoveDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (fleetrepo.Fleet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[fleet]
	if !ok {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	if hasDriver(f, driver) {
		out := make([]domain.UserID, 0, len(f.Drivers)-1)
		for _, d := range f.Drivers {
			if d == driver {
				continue
			}
			out = append(out, d)
		}
		f.Drivers = out
		if err := r.users.SetFleetID(ctx, driver, nil); err != nil {
			return fleetrepo.Fleet{}, err
		}
		r.byID[fleet] = cloneFleet(f)
	}
	return cloneFleet(f), nil
}

func hasDriver(f fleetrepo.Fleet, user domain.UserID) bool {
	for _, d := range f.Drivers {
		if d == user {
			return true
		}
	}
	return false
}

// sortFleets orders newest first, with ID as tie-break for determinism.
func sortFleets(fs []fleetrepo.Fleet) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].CreatedAt.Equal(fs[j].CreatedAt) {
			return fs[i].ID < fs[j].ID
		}
		return fs[i].CreatedAt.After(fs[j].CreatedAt)
	})
}

func cloneFleet(f fleetrepo.Fleet) fleetrepo.Fleet {
	out := f
	out.Drivers = append([]domain.UserID(nil), f.Drivers...)
	return out
}
