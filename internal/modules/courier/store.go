// README: Delivery partner store: profiles in PostgreSQL, live positions in
// a Redis GEO set, route trace appended to PostgreSQL.
package courier

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"quickcart/internal/types"
)

const partnerGeoKey = "dispatch:couriers"

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redisClient *redis.Client) *Store {
	return &Store{db: db, redis: redisClient}
}

// SetPosition writes the live position to the GEO index and mirrors it on the
// profile row so reads without redis still see a recent location.
func (s *Store) SetPosition(ctx context.Context, id types.ID, p types.Point) error {
	if err := s.redis.GeoAdd(ctx, partnerGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
        UPDATE delivery_partners
        SET current_lat = $1, current_lng = $2, location_updated_at = NOW()
        WHERE id = $3`,
		p.Lat, p.Lng, string(id),
	)
	return err
}

// RemovePosition drops the courier from the live index (going offline).
func (s *Store) RemovePosition(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, partnerGeoKey, string(id)).Err()
}

// Nearby returns couriers within radiusKm of p, ascending by distance, from
// the live-position index. Callers still need to filter by profile state.
func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]GeoCandidate, error) {
	results, err := s.redis.GeoSearchLocation(ctx, partnerGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	candidates := make([]GeoCandidate, len(results))
	for i, r := range results {
		candidates[i] = GeoCandidate{ID: types.ID(r.Name), DistanceKm: r.Dist}
	}
	return candidates, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*DeliveryPartner, error) {
	row := s.db.QueryRow(ctx, `
        SELECT dp.id, dp.user_id, dp.current_lat, dp.current_lng, dp.status,
               u.status, dp.rating, dp.total_deliveries, dp.service_area_id
        FROM delivery_partners dp
        JOIN users u ON u.id = dp.user_id
        WHERE dp.id = $1`, string(id),
	)
	p, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetMany loads profiles for the given ids, preserving no particular order.
func (s *Store) GetMany(ctx context.Context, ids []types.ID) (map[types.ID]*DeliveryPartner, error) {
	if len(ids) == 0 {
		return map[types.ID]*DeliveryPartner{}, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
        SELECT dp.id, dp.user_id, dp.current_lat, dp.current_lng, dp.status,
               u.status, dp.rating, dp.total_deliveries, dp.service_area_id
        FROM delivery_partners dp
        JOIN users u ON u.id = dp.user_id
        WHERE dp.id = ANY($1)`, raw,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[types.ID]*DeliveryPartner, len(ids))
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// AvailableByArea lists couriers eligible for assignment in an area:
// available, linked to an active user.
func (s *Store) AvailableByArea(ctx context.Context, areaID types.ID) ([]DeliveryPartner, error) {
	rows, err := s.db.Query(ctx, `
        SELECT dp.id, dp.user_id, dp.current_lat, dp.current_lng, dp.status,
               u.status, dp.rating, dp.total_deliveries, dp.service_area_id
        FROM delivery_partners dp
        JOIN users u ON u.id = dp.user_id
        WHERE dp.service_area_id = $1
          AND dp.status = 'available'
          AND u.status = 'active'
        ORDER BY dp.id`, string(areaID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []DeliveryPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, h HistoryPoint) error {
	var orderID *string
	if h.OrderID != nil {
		v := string(*h.OrderID)
		orderID = &v
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO courier_location_history (partner_id, order_id, lat, lng, recorded_at)
        VALUES ($1, $2, $3, $4, $5)`,
		string(h.PartnerID), orderID, h.Position.Lat, h.Position.Lng, h.RecordedAt,
	)
	return err
}

func scanPartner(row pgx.Row) (*DeliveryPartner, error) {
	var p DeliveryPartner
	var lat, lng sql.NullFloat64
	if err := row.Scan(
		&p.ID, &p.UserID, &lat, &lng, &p.Status,
		&p.UserStatus, &p.Rating, &p.TotalDeliveries, &p.ServiceAreaID,
	); err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		p.CurrentLocation = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &p, nil
}
