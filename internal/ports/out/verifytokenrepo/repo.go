package verifytokenrepo

import (
	"context"
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
)

// Token is a one-time email verification token.
type Token struct {
	Token  string
	UserID domain.UserID

	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repository stores one-time verification tokens.
type Repository interface {
	Create(ctx context.Context, t Token) error

	// Consume atomically looks up and deletes the token so it can be
	// redeemed at most once. A token that was never issued, was already
	// consumed, or expired before now fails ErrNotFound.
	Consume(ctx context.Context, token string, now time.Time) (Token, error)
}
