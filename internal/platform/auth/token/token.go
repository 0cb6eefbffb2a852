package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scc-freight/freight-api/internal/domain"
)

var ErrInvalid = errors.New("invalid or expired token")

// Claims are the freight-api JWT claims. The subject duplicates UserID so
// generic JWT tooling sees a standard `sub`.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Config configures HS256 token issue/verify against a shared secret.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Signer issues and verifies bearer tokens.
type Signer struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Signer {
	return NewWithClock(cfg, time.Now)
}

// NewWithClock is used by tests that need deterministic expiry behavior.
func NewWithClock(cfg Config, now func() time.Time) *Signer {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &Signer{cfg: cfg, now: now}
}

// Issue mints a signed token embedding the user's identity, email, and role.
func (s *Signer) Issue(u domain.User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: string(u.ID),
		Email:  u.Email,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.cfg.Secret))
}

// Verify parses and validates a token, returning its claims. All failure
// modes (bad signature, expiry, malformed input) collapse into ErrInvalid;
// the distinction is for logs, not for callers.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !tok.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}

// Principal converts verified claims into a request principal.
func (c Claims) Principal() domain.Principal {
	return domain.Principal{
		UserID: domain.UserID(c.UserID),
		Email:  c.Email,
		Role:   domain.Role(c.Role),
	}
}
