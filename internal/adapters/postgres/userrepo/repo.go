package userrepo

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
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

const userColumns = `
	id,
	name,
	email,
	password_digest,
	role,
	verified,
	active,
	fleet_id,
	company_name,
	contact_number,
	address,
	bio,
	created_at,
	updated_at
`

// Repo is a Postgres implementation of userrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (
			id,
			name,
			email,
			password_digest,
			role,
			verified,
			active,
			fleet_id,
			company_name,
			contact_number,
			address,
			bio,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		id,
		u.Name,
		u.Email,
		u.PasswordDigest,
		string(u.Role),
		u.Verified,
		u.Active,
		fleetIDArg(u.FleetID),
		u.Profile.CompanyName,
		u.Profile.ContactNumber,
		u.Profile.Address,
		u.Profile.Bio,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_email_unique":
				return userrepo.ErrEmailTaken
			case "users_pkey":
				return userrepo.ErrAlreadyExists
			default:
				return err
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $2,
		    email = $3,
		    password_digest = $4,
		    role = $5,
		    verified = $6,
		    active = $7,
		    company_name = $8,
		    contact_number = $9,
		    address = $10,
		    bio = $11,
		    updated_at = $12
		WHERE id = $1
	`,
		id,
		u.Name,
		u.Email,
		u.PasswordDigest,
		string(u.Role),
		u.Verified,
		u.Active,
		u.Profile.CompanyName,
		u.Profile.ContactNumber,
		u.Profile.Address,
		u.Profile.Bio,
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			if pe.ConstraintName == "users_email_unique" {
				return userrepo.ErrEmailTaken
			}
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
	return scanUser(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *Repo) List(ctx context.Context) ([]userrepo.User, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]userrepo.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) SetVerified(ctx context.Context, id domain.UserID, verified bool) error {
	return r.setField(ctx, id, `verified = $2`, verified)
}

func (r *Repo) SetRole(ctx context.Context, id domain.UserID, role domain.Role) error {
	return r.setField(ctx, id, `role = $2`, string(role))
}

func (r *Repo) SetFleetID(ctx context.Context, id domain.UserID, fleet *domain.FleetID) error {
	return r.setField(ctx, id, `fleet_id = $2`, fleetIDArg(fleet))
}

func (r *Repo) setField(ctx context.Context, id domain.UserID, assign string, val any) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `UPDATE users SET `+assign+`, updated_at = now() WHERE id = $1`, uid, val)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func fleetIDArg(p *domain.FleetID) any {
	if p == nil {
		return nil
	}
	id, err := uuid.Parse(string(*p))
	if err != nil {
		return nil
	}
	return id
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (userrepo.User, error) {
	var (
		id             uuid.UUID
		name           string
		email          string
		passwordDigest string
		role           string
		verified       bool
		active         bool
		fleetID        *uuid.UUID
		companyName    *string
		contactNumber  *string
		address        *string
		bio            *string
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(
		&id,
		&name,
		&email,
		&passwordDigest,
		&role,
		&verified,
		&active,
		&fleetID,
		&companyName,
		&contactNumber,
		&address,
		&bio,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, err
	}
	var fid *domain.FleetID
	if fleetID != nil {
		v := domain.FleetID(fleetID.String())
		fid = &v
	}
	return userrepo.User{
		ID:             domain.UserID(id.String()),
		Name:           name,
		Email:          email,
		PasswordDigest: passwordDigest,
		Role:           domain.Role(role),
		Verified:       verified,
		Active:         active,
		FleetID:        fid,
		Profile: domain.Profile{
			CompanyName:   companyName,
			ContactNumber: contactNumber,
			Address:       address,
			Bio:           bio,
		},
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}
