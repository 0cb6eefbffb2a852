package verifytokenrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/scc-freight/freight-api/internal/adapters/postgres"
	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

// Repo is a Postgres implementation of verifytokenrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t verifytokenrepo.Token) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(t.UserID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO verify_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, t.Token, uid, t.ExpiresAt.UTC(), t.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return verifytokenrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Consume deletes and returns the row in one statement, so a token redeems
// at most once even when two requests race.
func (r *Repo) Consume(ctx context.Context, token string, now time.Time) (verifytokenrepo.Token, error) {
	if r.pool == nil {
		return verifytokenrepo.Token{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		DELETE FROM verify_tokens
		WHERE token = $1
		RETURNING token, user_id, expires_at, created_at
	`, token)

	var (
		tok       string
		uid       uuid.UUID
		expiresAt time.Time
		createdAt time.Time
	)
	if err := row.Scan(&tok, &uid, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return verifytokenrepo.Token{}, verifytokenrepo.ErrNotFound
		}
		return verifytokenrepo.Token{}, err
	}
	if now.After(expiresAt) {
		return verifytokenrepo.Token{}, verifytokenrepo.ErrNotFound
	}
	return verifytokenrepo.Token{
		Token:     tok,
		UserID:    domain.UserID(uid.String()),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: createdAt.UTC(),
	}, nil
}
