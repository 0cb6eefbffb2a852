package fleetrepo

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
	"github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
)

// Repo is a Postgres implementation of fleetrepo.Repository.
//
// Membership mutations run in a single transaction covering the
// fleet_drivers row and the users.fleet_id mirror column, so the two can
// never diverge. The fleet_drivers_driver_unique constraint backs the
// at-most-one-fleet invariant at the storage level.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, f fleetrepo.Fleet) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(f.ID))
	if err != nil {
		return fmt.Errorf("invalid fleet id: %w", err)
	}
	owner, err := uuid.Parse(string(f.Owner))
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO fleets (id, name, mc_number, status, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			id,
			f.Name,
			f.MCNumber,
			string(f.Status),
			owner,
			f.CreatedAt.UTC(),
			f.UpdatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				switch pe.ConstraintName {
				case "fleets_name_unique":
					return fleetrepo.ErrNameTaken
				case "fleets_pkey":
					return fleetrepo.ErrAlreadyExists
				default:
					return err
				}
			}
			return err
		}

		// Mirror ownership onto the user row in the same transaction.
		ct, err := tx.Exec(ctx, `UPDATE users SET fleet_id = $2, updated_at = now() WHERE id = $1`, owner, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("owner %s does not exist", f.Owner)
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.FleetID) (fleetrepo.Fleet, error) {
	if r.pool == nil {
		return fleetrepo.Fleet{}, errors.New("nil postgres pool")
	}
	fid, err := uuid.Parse(string(id))
	if err != nil {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	return r.getWhere(ctx, `f.id = $1`, fid)
}

func (r *Repo) GetByOwner(ctx context.Context, owner domain.UserID) (fleetrepo.Fleet, error) {
	if r.pool == nil {
		return fleetrepo.Fleet{}, errors.New("nil postgres pool")
	}
	oid, err := uuid.Parse(string(owner))
	if err != nil {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	return r.getWhere(ctx, `f.owner_id = $1`, oid)
}

func (r *Repo) GetByMember(ctx context.Context, user domain.UserID) (fleetrepo.Fleet, error) {
	if r.pool == nil {
		return fleetrepo.Fleet{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(user))
	if err != nil {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	return r.getWhere(ctx, `f.owner_id = $1 OR EXISTS (
		SELECT 1 FROM fleet_drivers fd WHERE fd.fleet_id = f.id AND fd.driver_id = $1
	)`, uid)
}

func (r *Repo) List(ctx context.Context) ([]fleetrepo.Fleet, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, mc_number, status, owner_id, created_at, updated_at
		FROM fleets
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]fleetrepo.Fleet, 0)
	for rows.Next() {
		f, err := scanFleet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		drivers, err := r.loadDrivers(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Drivers = drivers
	}
	return out, nil
}

func (r *Repo) AddDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (fleetrepo.Fleet, error) {
	if r.pool == nil {
		return fleetrepo.Fleet{}, errors.New("nil postgres pool")
	}
	fid, err := uuid.Parse(string(fleet))
	if err != nil {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	did, err := uuid.Parse(string(driver))
	if err != nil {
		return fleetrepo.Fleet{}, fmt.Errorf("invalid driver id: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var owner uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT owner_id FROM fleets WHERE id = $1`, fid).Scan(&owner); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fleetrepo.ErrNotFound
			}
			return err
		}
		// The owner has no fleet_drivers row, so the unique constraints
		// would not stop them from being absorbed as a driver.
		if owner == did {
			return fleetrepo.ErrDriverAlreadyInFleet
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO fleet_drivers (fleet_id, driver_id) VALUES ($1, $2)
		`, fid, did)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				switch pe.ConstraintName {
				case "fleet_drivers_pkey":
					return fleetrepo.ErrDriverAlreadyInFleet
				case "fleet_drivers_driver_unique":
					return fleetrepo.ErrDriverInOtherFleet
				default:
					return err
				}
			}
			return err
		}

		// A user whose mirror already points elsewhere (for example a fleet
		// owner) must not be absorbed as a driver.
		ct, err := tx.Exec(ctx, `
			UPDATE users SET fleet_id = $2, updated_at = now()
			WHERE id = $1 AND (fleet_id IS NULL OR fleet_id = $2)
		`, did, fid)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fleetrepo.ErrDriverInOtherFleet
		}
		return nil
	})
	if err != nil {
		return fleetrepo.Fleet{}, err
	}
	return r.GetByID(ctx, fleet)
}

func (r *Repo) RemoveDriver(ctx context.Context, fleet domain.FleetID, driver domain.UserID) (fleetrepo.Fleet, error) {
	if r.pool == nil {
		return fleetrepo.Fleet{}, errors.New("nil postgres pool")
	}
	fid, err := uuid.Parse(string(fleet))
	if err != nil {
		return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
	}
	did, err := uuid.Parse(string(driver))
	if err != nil {
		return fleetrepo.Fleet{}, fmt.Errorf("invalid driver id: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fleets WHERE id = $1)`, fid).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fleetrepo.ErrNotFound
		}

		ct, err := tx.Exec(ctx, `DELETE FROM fleet_drivers WHERE fleet_id = $1 AND driver_id = $2`, fid, did)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			// Not a member; nothing to mirror.
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET fleet_id = NULL, updated_at = now()
			WHERE id = $1 AND fleet_id = $2
		`, did, fid)
		return err
	})
	if err != nil {
		return fleetrepo.Fleet{}, err
	}
	return r.GetByID(ctx, fleet)
}

func (r *Repo) getWhere(ctx context.Context, where string, arg any) (fleetrepo.Fleet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT f.id, f.name, f.mc_number, f.status, f.owner_id, f.created_at, f.updated_at
		FROM fleets f
		WHERE `+where, arg)
	f, err := scanFleet(row)
	if err != nil {
		return fleetrepo.Fleet{}, err
	}
	drivers, err := r.loadDrivers(ctx, r.pool, f.ID)
	if err != nil {
		return fleetrepo.Fleet{}, err
	}
	f.Drivers = drivers
	return f, nil
}

func (r *Repo) loadDrivers(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, fleet domain.FleetID) ([]domain.UserID, error) {
	fid, err := uuid.Parse(string(fleet))
	if err != nil {
		return nil, fleetrepo.ErrNotFound
	}
	rows, err := q.Query(ctx, `
		SELECT driver_id FROM fleet_drivers WHERE fleet_id = $1 ORDER BY added_at ASC, driver_id ASC
	`, fid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, domain.UserID(id.String()))
	}
	return out, rows.Err()
}

func scanFleet(row interface {
	Scan(dest ...any) error
}) (fleetrepo.Fleet, error) {
	var (
		id        uuid.UUID
		name      string
		mcNumber  string
		status    string
		owner     uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &mcNumber, &status, &owner, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fleetrepo.Fleet{}, fleetrepo.ErrNotFound
		}
		return fleetrepo.Fleet{}, err
	}
	return fleetrepo.Fleet{
		ID:        domain.FleetID(id.String()),
		Name:      name,
		MCNumber:  mcNumber,
		Status:    domain.FleetStatus(status),
		Owner:     domain.UserID(owner.String()),
		Drivers:   []domain.UserID{},
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}
