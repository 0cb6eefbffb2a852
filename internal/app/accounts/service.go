package accounts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/clock"
	"github.com/scc-freight/freight-api/internal/ports/out/mailer"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
	"github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(u domain.User) (string, error)
}

type Service struct {
	users  userrepo.Repository
	tokens verifytokenrepo.Repository
	mail   mailer.Mailer
	issuer TokenIssuer
	clock  clock.Clock
	log    zerolog.Logger

	baseURL   string
	verifyTTL time.Duration

	newUserID      func() domain.UserID
	newVerifyToken func() (string, error)
}

func NewService(
	users userrepo.Repository,
	tokens verifytokenrepo.Repository,
	mail mailer.Mailer,
	issuer TokenIssuer,
	clk clock.Clock,
	log zerolog.Logger,
	baseURL string,
	verifyTTL time.Duration,
) *Service {
	if verifyTTL <= 0 {
		verifyTTL = time.Hour
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		mail:      mail,
		issuer:    issuer,
		clock:     clk,
		log:       log,
		baseURL:   strings.TrimRight(baseURL, "/"),
		verifyTTL: verifyTTL,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
		newVerifyToken: func() (string, error) {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				return "", err
			}
			return hex.EncodeToString(b), nil
		},
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

// SetNewVerifyTokenForTest overrides verification token generation for
// deterministic tests. It should not be used in production code.
func (s *Service) SetNewVerifyTokenForTest(fn func() (string, error)) {
	if fn != nil {
		s.newVerifyToken = fn
	}
}

// Register creates an unverified account and emails a one-time verification
// link. The mail send is fire-and-forget: a delivery failure is logged and
// the registration still succeeds.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	name := domain.NormalizeName(in.Name)
	if name == "" {
		return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid email", Details: map[string]any{"email": "must be a valid address"}}
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid password", Details: map[string]any{"password": fmt.Sprintf("must be at least %d characters", minPasswordLength)}}
	}

	role := domain.DefaultRole
	if strings.TrimSpace(in.Role) != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid role", Details: map[string]any{"role": "unknown role"}}
		}
		role = r
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	u := userrepo.User{
		ID:             s.newUserID(),
		Name:           name,
		Email:          email,
		PasswordDigest: string(digest),
		Role:           role,
		Verified:       false,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return domain.User{}, &Error{Status: 400, Code: "EMAIL_TAKEN", Message: "an account with this email already exists"}
		}
		return domain.User{}, err
	}

	if err := s.issueVerification(ctx, u, now); err != nil {
		// The account exists either way; the user can ask for a resend.
		s.log.Error().Err(err).Str("user_id", string(u.ID)).Msg("send verification email")
	}

	return toDomainUser(u), nil
}

func (s *Service) issueVerification(ctx context.Context, u userrepo.User, now time.Time) error {
	tok, err := s.newVerifyToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.Create(ctx, verifytokenrepo.Token{
		Token:     tok,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.verifyTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	link := fmt.Sprintf("%s/api/verify/%s", s.baseURL, tok)
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Verify your SCC Freight account",
		Body: fmt.Sprintf(
			"Hi %s,\n\nPlease verify your email address by opening the link below within %s:\n\n%s\n\nIf you did not create this account you can ignore this message.\n",
			u.Name, s.verifyTTL, link,
		),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// VerifyEmail redeems a one-time verification token and marks the account
// verified. Tokens are single-use; a second redemption fails like an unknown
// token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, &Error{Status: 400, Code: "VERIFY_TOKEN_INVALID", Message: "invalid or expired verification token"}
	}
	t, err := s.tokens.Consume(ctx, token, s.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, verifytokenrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 400, Code: "VERIFY_TOKEN_INVALID", Message: "invalid or expired verification token"}
		}
		return domain.User{}, err
	}

	if err := s.users.SetVerified(ctx, t.UserID, true); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			// Account was deleted between issue and redeem.
			return domain.User{}, &Error{Status: 400, Code: "VERIFY_TOKEN_INVALID", Message: "invalid or expired verification token"}
		}
		return domain.User{}, err
	}
	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

// Login authenticates by email and password and mints a bearer token.
// Unknown email, unverified account, and wrong password are reported as
// distinct failures.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return LoginResult{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "no account with this email"}
		}
		return LoginResult{}, err
	}
	if !u.Verified {
		return LoginResult{}, &Error{Status: 401, Code: "NOT_VERIFIED", Message: "email address is not verified"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(password)); err != nil {
		return LoginResult{}, &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
	}
	if !u.Active {
		return LoginResult{}, &Error{Status: 403, Code: "ACCOUNT_DISABLED", Message: "account is disabled"}
	}

	du := toDomainUser(u)
	tok, err := s.issuer.Issue(du)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: tok, User: du}, nil
}

// GetAccount returns the account for id.
func (s *Service) GetAccount(ctx context.Context, id domain.UserID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "user not found"}
		}
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

// UpdateMyProfile patches the caller's own profile fields. Name cannot be
// cleared; the cosmetic fields accept null to clear.
func (s *Service) UpdateMyProfile(ctx context.Context, caller domain.UserID, in UpdateProfileInput) (domain.User, error) {
	u, err := s.users.GetByID(ctx, caller)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "user not found"}
		}
		return domain.User{}, err
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.User{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "cannot be null"}}
		}
		name := domain.NormalizeName(in.Name.Value())
		if name == "" {
			return domain.User{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
		}
		u.Name = name
	}

	applyNullableString := func(dst **string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = nil
			return
		}
		v := strings.TrimSpace(o.Value())
		*dst = &v
	}

	applyNullableString(&u.Profile.CompanyName, in.CompanyName)
	applyNullableString(&u.Profile.ContactNumber, in.ContactNumber)
	applyNullableString(&u.Profile.Address, in.Address)
	applyNullableString(&u.Profile.Bio, in.Bio)

	u.UpdatedAt = s.clock.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

// ListUsers returns all accounts, newest first. Authorization (admin-only)
// is enforced at the transport layer.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(us))
	for _, u := range us {
		out = append(out, toDomainUser(u))
	}
	return out, nil
}

// ChangeRole sets a user's role. The change takes effect on the target's
// next re-fetch-tier request; outstanding tokens keep their old role claim
// until then.
func (s *Service) ChangeRole(ctx context.Context, id domain.UserID, role string) (domain.User, error) {
	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.User{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid role", Details: map[string]any{"role": "unknown role"}}
	}
	if err := s.users.SetRole(ctx, id, r); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "user not found"}
		}
		return domain.User{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

func toDomainUser(u userrepo.User) domain.User {
	return domain.User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
		Active:   u.Active,
		FleetID:  cloneFleetIDPtr(u.FleetID),
		Profile: domain.Profile{
			CompanyName:   cloneStringPtr(u.Profile.CompanyName),
			ContactNumber: cloneStringPtr(u.Profile.ContactNumber),
			Address:       cloneStringPtr(u.Profile.Address),
			Bio:           cloneStringPtr(u.Profile.Bio),
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
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
