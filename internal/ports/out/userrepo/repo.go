package userrepo

import (
	"context"
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
)

// User is the persistence shape used by the user repository. It carries the
// password digest and is never exposed as an HTTP DTO.
type User struct {
	ID             domain.UserID
	Name           string
	Email          string
	PasswordDigest string
	Role           domain.Role

	Verified bool
	Active   bool

	// FleetID is the membership mirror; it is written only through the
	// fleet repository's atomic operations (or SetFleetID for repairs).
	FleetID *domain.FleetID

	Profile domain.Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted users.
//
// List returns users ordered by CreatedAt descending (newest first) to keep
// behavior deterministic.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error

	GetByID(ctx context.Context, id domain.UserID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	List(ctx context.Context) ([]User, error)

	// SetVerified flips the verified flag. Verification is one-way; callers
	// never pass false outside of tests.
	SetVerified(ctx context.Context, id domain.UserID, verified bool) error

	// SetRole changes the user's role. Role changes do not retroactively
	// alter prior authorization decisions.
	SetRole(ctx context.Context, id domain.UserID, role domain.Role) error

	// SetFleetID writes the membership mirror field; nil clears it.
	SetFleetID(ctx context.Context, id domain.UserID, fleet *domain.FleetID) error
}
