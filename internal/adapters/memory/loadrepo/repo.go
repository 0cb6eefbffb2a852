package loadrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/loadrepo"
)

// Repo is an in-memory implementation of loadrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.LoadID]loadrepo.Load
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.LoadID]loadrepo.Load),
	}
}

func (r *Repo) Create(ctx context.Context, l loadrepo.Load) error {
	_ = ctx
	if l.ID == "" {
		return loadrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[l.ID]; ok {
		return loadrepo.ErrAlreadyExists
	}
	r.byID[l.ID] = cloneLoad(l)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.LoadID) (loadrepo.Load, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return loadrepo.Load{}, loadrepo.ErrNotFound
	}
	return cloneLoad(l), nil
}

func (r *Repo) List(ctx context.Context) ([]loadrepo.Load, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]loadrepo.Load, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, cloneLoad(l))
	}
	sortLoads(out)
	return out, nil
}

func (r *Repo) ListByShipper(ctx context.Context, shipper domain.UserID) ([]loadrepo.Load, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]loadrepo.Load, 0)
	for _, l := range r.byID {
		if l.Shipper == shipper {
			out = append(out, cloneLoad(l))
		}
	}
	sortLoads(out)
	return out, nil
}

// UpdateStatus applies the lifecycle check and the write under the same
// lock so racing transitions cannot both observe the old status.
func (r *Repo) UpdateStatus(ctx context.Context, id domain.LoadID, next domain.LoadStatus, carrier *domain.UserID, now time.Time) (loadrepo.Load, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return loadrepo.Load{}, loadrepo.ErrNotFound
	}
	if !l.Status.CanTransitionTo(next) {
		return loadrepo.Load{}, loadrepo.ErrInvalidTransition
	}
	l.Status = next
	if carrier != nil {
		v := *carrier
		l.Carrier = &v
	}
	l.UpdatedAt = now
	r.byID[id] = cloneLoad(l)
	return cloneLoad(l), nil
}

func (r *Repo) Delete(ctx context.Context, id domain.LoadID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return loadrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// sortLoads orders newest first, with ID as tie-break for determinism.
func sortLoads(ls []loadrepo.Load) {
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].CreatedAt.Equal(ls[j].CreatedAt) {
			return ls[i].ID < ls[j].ID
		}
		return ls[i].CreatedAt.After(ls[j].CreatedAt)
	})
}

func cloneLoad(l loadrepo.Load) loadrepo.Load {
	out := l
	if l.Carrier != nil {
		v := *l.Carrier
		out.Carrier = &v
	}
	if l.DeliveryDate != nil {
		v := *l.DeliveryDate
		out.DeliveryDate = &v
	}
	if l.Notes != nil {
		v := *l.Notes
		out.Notes = &v
	}
	return out
}
