// README: Order store backed by PostgreSQL; assignment is a guarded
// transaction so two concurrent attempts resolve to exactly one success.
package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quickcart/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, customer_id, vendor_id, service_area_id, status,
               delivery_partner_id, vendor_lat, vendor_lng,
               delivery_lat, delivery_lng, delivery_address_id,
               created_at, assigned_at
        FROM orders
        WHERE id = $1`, string(id),
	)

	var o Order
	var partnerID, addressID sql.NullString
	var vendorLat, vendorLng, deliveryLat, deliveryLng sql.NullFloat64
	var assignedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.VendorID, &o.ServiceAreaID, &o.Status,
		&partnerID, &vendorLat, &vendorLng,
		&deliveryLat, &deliveryLng, &addressID,
		&o.CreatedAt, &assignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if partnerID.Valid {
		p := types.ID(partnerID.String)
		o.DeliveryPartnerID = &p
	}
	if addressID.Valid {
		a := types.ID(addressID.String)
		o.DeliveryAddressID = &a
	}
	if vendorLat.Valid && vendorLng.Valid {
		o.VendorLocation = &types.Point{Lat: vendorLat.Float64, Lng: vendorLng.Float64}
	}
	if deliveryLat.Valid && deliveryLng.Valid {
		o.DeliveryLocation = &types.Point{Lat: deliveryLat.Float64, Lng: deliveryLng.Float64}
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		o.AssignedAt = &t
	}
	return &o, nil
}

// AssignPartner binds a courier to an order. The order update, the courier
// status flip, and the history row commit together or not at all. The WHERE
// clauses are the exclusivity guard: an order already assigned or no longer
// ready, or a courier no longer available, aborts with ErrPrecondition.
func (s *Store) AssignPartner(ctx context.Context, orderID, partnerID types.ID) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        UPDATE orders
        SET delivery_partner_id = $1,
            status = $2,
            assigned_at = NOW()
        WHERE id = $3
          AND delivery_partner_id IS NULL
          AND status = $4`,
		string(partnerID), string(StatusAssigned), string(orderID), string(StatusReadyForPickup),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrPrecondition
	}

	tag, err = tx.Exec(ctx, `
        UPDATE delivery_partners
        SET status = 'busy'
        WHERE id = $1 AND status = 'available'`,
		string(partnerID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrPrecondition
	}

	pid := partnerID
	if err := appendEventTx(ctx, tx, &Event{
		OrderID:    orderID,
		FromStatus: StatusReadyForPickup,
		ToStatus:   StatusAssigned,
		ActorType:  "system",
		ActorID:    &pid,
		CreatedAt:  time.Now(),
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO order_status_events (
            order_id, from_status, to_status, actor_type, actor_id, note, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.Note,
		e.CreatedAt,
	)
	return err
}

func appendEventTx(ctx context.Context, tx pgx.Tx, e *Event) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO order_status_events (
            order_id, from_status, to_status, actor_type, actor_id, note, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.Note,
		e.CreatedAt,
	)
	return err
}

// ActiveByPartner returns the partner's single in-flight order, if any.
func (s *Store) ActiveByPartner(ctx context.Context, partnerID types.ID) (*Order, bool, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id FROM orders
        WHERE delivery_partner_id = $1
          AND status IN ('assigned_to_delivery','picked_up','in_transit')
        ORDER BY assigned_at DESC
        LIMIT 1`, string(partnerID),
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	o, err := s.Get(ctx, types.ID(id))
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// ActiveCountByPartner counts in-flight orders for the single-active-delivery
// policy check.
func (s *Store) ActiveCountByPartner(ctx context.Context, partnerID types.ID) (int, error) {
	row := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM orders
        WHERE delivery_partner_id = $1
          AND status IN ('assigned_to_delivery','picked_up','in_transit')`, string(partnerID),
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
