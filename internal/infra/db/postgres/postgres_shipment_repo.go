package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/repository"
)

var _ repository.ShipmentRepository = (*shipmentRepo)(nil)

type shipmentRepo struct {
	pool *pgxpool.Pool
}

func NewShipmentRepo(pool *pgxpool.Pool) *shipmentRepo {
	return &shipmentRepo{pool: pool}
}

const shipmentColumns = `id, tracking_code, user_id, thread_id, carrier_id, carrier_name,
rate, origin, destination, cargo, status, estimated_at, created_at, updated_at`

func (r *shipmentRepo) Save(ctx context.Context, s *model.Shipment) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	const q = `
INSERT INTO shipments (id, tracking_code, user_id, thread_id, carrier_id, carrier_name,
  rate, origin, destination, cargo, status, estimated_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  estimated_at = EXCLUDED.estimated_at,
  updated_at = EXCLUDED.updated_at;`

	_, err := r.pool.Exec(ctx, q, s.ID, s.TrackingCode, s.UserID, s.ThreadID,
		s.CarrierID, s.CarrierName, s.Rate, s.Origin, s.Destination, s.Cargo,
		s.Status, s.EstimatedAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *shipmentRepo) FindByTracking(ctx context.Context, trackingCode string) (*model.Shipment, error) {
	q := `SELECT ` + shipmentColumns + ` FROM shipments WHERE tracking_code = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, trackingCode))
}

func (r *shipmentRepo) FindByUser(ctx context.Context, userID string) ([]*model.Shipment, error) {
	q := `SELECT ` + shipmentColumns + ` FROM shipments WHERE user_id = $1 ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Shipment
	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *shipmentRepo) UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error {
	const q = `UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *shipmentRepo) scanOne(row pgx.Row) (*model.Shipment, error) {
	var s model.Shipment
	var statusStr string
	err := row.Scan(&s.ID, &s.TrackingCode, &s.UserID, &s.ThreadID, &s.CarrierID,
		&s.CarrierName, &s.Rate, &s.Origin, &s.Destination, &s.Cargo,
		&statusStr, &s.EstimatedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Status = model.ShipmentStatus(statusStr)
	return &s, nil
}
