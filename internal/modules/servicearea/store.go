// README: Service area store backed by PostgreSQL; boundaries live in JSONB.
package servicearea

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quickcart/internal/types"
)

var ErrAreaNotFound = errors.New("service area not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListActive(ctx context.Context) ([]ServiceArea, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, boundary, center_lat, center_lng, status
        FROM service_areas
        WHERE status = 'active'
        ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []ServiceArea
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (s *Store) Get(ctx context.Context, id types.ID) (*ServiceArea, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, boundary, center_lat, center_lng, status
        FROM service_areas
        WHERE id = $1`, string(id),
	)
	a, err := scanArea(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *ServiceArea) error {
	boundary, err := json.Marshal(a.Boundary)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO service_areas (id, name, boundary, center_lat, center_lng, status)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		string(a.ID), a.Name, boundary, a.Center.Lat, a.Center.Lng, string(a.Status),
	)
	return err
}

func (s *Store) Update(ctx context.Context, a *ServiceArea) error {
	boundary, err := json.Marshal(a.Boundary)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE service_areas
        SET name = $1, boundary = $2, center_lat = $3, center_lng = $4, status = $5
        WHERE id = $6`,
		a.Name, boundary, a.Center.Lat, a.Center.Lng, string(a.Status), string(a.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAreaNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM service_areas WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAreaNotFound
	}
	return nil
}

// LinkAddress records which area an address resolved into, so later orders
// can skip resolution.
func (s *Store) LinkAddress(ctx context.Context, addressID, areaID types.ID) error {
	_, err := s.db.Exec(ctx, `
        UPDATE addresses SET service_area_id = $1 WHERE id = $2`,
		string(areaID), string(addressID),
	)
	return err
}

func scanArea(row pgx.Row) (ServiceArea, error) {
	var a ServiceArea
	var boundary []byte
	if err := row.Scan(&a.ID, &a.Name, &boundary, &a.Center.Lat, &a.Center.Lng, &a.Status); err != nil {
		return ServiceArea{}, err
	}
	if err := json.Unmarshal(boundary, &a.Boundary); err != nil {
		return ServiceArea{}, err
	}
	return a, nil
}
