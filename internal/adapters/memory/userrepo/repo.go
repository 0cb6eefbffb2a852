package userrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu      sync.RWMutex
	byID    map[domain.UserID]userrepo.User
	byEmail map[string]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.UserID]userrepo.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_ = ctx
	if u.ID == "" {
		return userrepo.ErrAlreadyExists
	}
	key := emailKey(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	if _, ok := r.byEmail[key]; ok {
		return userrepo.ErrEmailTaken
	}
	r.byID[u.ID] = cloneUser(u)
	r.byEmail[key] = u.ID
	return nil
}

func (r *Repo) Update(ctx context.Context, u userrepo.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return userrepo.ErrNotFound
	}
	newKey := emailKey(u.Email)
	oldKey := emailKey(cur.Email)
	if newKey != oldKey {
		if _, taken := r.byEmail[newKey]; taken {
			return userrepo.ErrEmailTaken
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = u.ID
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *Repo) List(ctx context.Context) ([]userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]userrepo.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sortUsers(out)
	return out, nil
}

func (r *Repo) SetVerified(ctx context.Context, id domain.UserID, verified bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.ErrNotFound
	}
	u.Verified = verified
	r.byID[id] = u
	return nil
}

func (r *Repo) SetRole(ctx context.Context, id domain.UserID, role domain.Role) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.ErrNotFound
	}
	u.Role = role
	r.byID[id] = u
	return nil
}

func (r *Repo) SetFleetID(ctx context.Context, id domain.UserID, fleet *domain.FleetID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.ErrNotFound
	}
	u.FleetID = cloneFleetIDPtr(fleet)
	r.byID[id] = u
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sortUsers orders newest first, with ID as tie-break for determinism.
func sortUsers(us []userrepo.User) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].ID < us[j].ID
		}
		return us[i].CreatedAt.After(us[j].CreatedAt)
	})
}

func cloneUser(u userrepo.User) userrepo.User {
	out := u
	out.FleetID = cloneFleetIDPtr(u.FleetID)
	out.Profile.CompanyName = cloneStringPtr(u.Profile.CompanyName)
	out.Profile.ContactNumber = cloneStringPtr(u.Profile.ContactNumber)
	out.Profile.Address = cloneStringPtr(u.Profile.Address)
	out.Profile.Bio = cloneStringPtr(u.Profile.Bio)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFleetIDPtr(p *domain.FleetID) *domain.FleetID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
