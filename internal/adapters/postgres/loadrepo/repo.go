package loadrepo

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
	"github.com/scc-freight/freight-api/internal/ports/out/loadrepo"
)

const loadColumns = `
	id,
	shipper_id,
	carrier_id,
	origin,
	destination,
	cargo_type,
	weight,
	price,
	pickup_date,
	delivery_date,
	status,
	notes,
	created_at,
	updated_at
`

// Repo is a Postgres implementation of loadrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, l loadrepo.Load) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(l.ID))
	if err != nil {
		return fmt.Errorf("invalid load id: %w", err)
	}
	shipper, err := uuid.Parse(string(l.Shipper))
	if err != nil {
		return fmt.Errorf("invalid shipper id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO loads (
			id,
			shipper_id,
			carrier_id,
			origin,
			destination,
			cargo_type,
			weight,
			price,
			pickup_date,
			delivery_date,
			status,
			notes,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		id,
		shipper,
		userIDArg(l.Carrier),
		l.Origin,
		l.Destination,
		l.CargoType,
		l.Weight,
		l.Price,
		l.PickupDate.UTC(),
		timeArg(l.DeliveryDate),
		string(l.Status),
		l.Notes,
		l.CreatedAt.UTC(),
		l.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return loadrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.LoadID) (loadrepo.Load, error) {
	if r.pool == nil {
		return loadrepo.Load{}, errors.New("nil postgres pool")
	}
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return loadrepo.Load{}, loadrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE id = $1`, lid)
	return scanLoad(row)
}

func (r *Repo) List(ctx context.Context) ([]loadrepo.Load, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	return r.list(ctx, `SELECT `+loadColumns+` FROM loads ORDER BY created_at DESC, id ASC`)
}

func (r *Repo) ListByShipper(ctx context.Context, shipper domain.UserID) ([]loadrepo.Load, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	sid, err := uuid.Parse(string(shipper))
	if err != nil {
		return []loadrepo.Load{}, nil
	}
	return r.list(ctx, `SELECT `+loadColumns+` FROM loads WHERE shipper_id = $1 ORDER BY created_at DESC, id ASC`, sid)
}

// UpdateStatus locks the row, checks the lifecycle edge, and writes inside
// one transaction so concurrent transitions serialize on the row lock.
func (r *Repo) UpdateStatus(ctx context.Context, id domain.LoadID, next domain.LoadStatus, carrier *domain.UserID, now time.Time) (loadrepo.Load, error) {
	if r.pool == nil {
		return loadrepo.Load{}, errors.New("nil postgres pool")
	}
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return loadrepo.Load{}, loadrepo.ErrNotFound
	}

	var out loadrepo.Load
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var cur string
		if err := tx.QueryRow(ctx, `SELECT status FROM loads WHERE id = $1 FOR UPDATE`, lid).Scan(&cur); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return loadrepo.ErrNotFound
			}
			return err
		}
		if !domain.LoadStatus(cur).CanTransitionTo(next) {
			return loadrepo.ErrInvalidTransition
		}

		var err error
		if carrier != nil {
			_, err = tx.Exec(ctx, `
				UPDATE loads SET status = $2, carrier_id = $3, updated_at = $4 WHERE id = $1
			`, lid, string(next), userIDArg(carrier), now.UTC())
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE loads SET status = $2, updated_at = $3 WHERE id = $1
			`, lid, string(next), now.UTC())
		}
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE id = $1`, lid)
		out, err = scanLoad(row)
		return err
	})
	if err != nil {
		return loadrepo.Load{}, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.LoadID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return loadrepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM loads WHERE id = $1`, lid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return loadrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]loadrepo.Load, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loadrepo.Load, 0)
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func userIDArg(p *domain.UserID) any {
	if p == nil {
		return nil
	}
	id, err := uuid.Parse(string(*p))
	if err != nil {
		return nil
	}
	return id
}

func timeArg(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func scanLoad(row interface {
	Scan(dest ...any) error
}) (loadrepo.Load, error) {
	var (
		id           uuid.UUID
		shipper      uuid.UUID
		carrier      *uuid.UUID
		origin       string
		destination  string
		cargoType    string
		weight       float64
		price        float64
		pickupDate   time.Time
		deliveryDate *time.Time
		status       string
		notes        *string
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id,
		&shipper,
		&carrier,
		&origin,
		&destination,
		&cargoType,
		&weight,
		&price,
		&pickupDate,
		&deliveryDate,
		&status,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loadrepo.Load{}, loadrepo.ErrNotFound
		}
		return loadrepo.Load{}, err
	}
	var cid *domain.UserID
	if carrier != nil {
		v := domain.UserID(carrier.String())
		cid = &v
	}
	var dd *time.Time
	if deliveryDate != nil {
		v := deliveryDate.UTC()
		dd = &v
	}
	return loadrepo.Load{
		ID:           domain.LoadID(id.String()),
		Shipper:      domain.UserID(shipper.String()),
		Carrier:      cid,
		Origin:       origin,
		Destination:  destination,
		CargoType:    cargoType,
		Weight:       weight,
		Price:        price,
		PickupDate:   pickupDate.UTC(),
		DeliveryDate: dd,
		Status:       domain.LoadStatus(status),
		Notes:        notes,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}
