package verifytokenrepo

import (
	"context"
	"sync"
	"time"

	"github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

// Repo is an in-memory implementation of verifytokenrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu      sync.Mutex
	byToken map[string]verifytokenrepo.Token
}

func NewRepo() *Repo {
	return &Repo{
		byToken: make(map[string]verifytokenrepo.Token),
	}
}

func (r *Repo) Create(ctx context.Context, t verifytokenrepo.Token) error {
	_ = ctx
	if t.Token == "" {
		return verifytokenrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byToken[t.Token]; ok {
		return verifytokenrepo.ErrAlreadyExists
	}
	r.byToken[t.Token] = t
	return nil
}

// Consume deletes under the same lock as the lookup so a token redeems at
// most once even under concurrent requests.
func (r *Repo) Consume(ctx context.Context, token string, now time.Time) (verifytokenrepo.Token, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok {
		return verifytokenrepo.Token{}, verifytokenrepo.ErrNotFound
	}
	delete(r.byToken, token)
	if now.After(t.ExpiresAt) {
		return verifytokenrepo.Token{}, verifytokenrepo.ErrNotFound
	}
	return t, nil
}
