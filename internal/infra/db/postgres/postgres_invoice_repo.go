package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

func (r *invoiceRepo) Save(ctx context.Context, inv *model.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	classification, err := marshalClassification(inv.Classification)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO invoices (id, owner_id, thread_id, booking_id, filename, status, classification, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  booking_id = EXCLUDED.booking_id,
  status = EXCLUDED.status,
  classification = EXCLUDED.classification,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`

	_, err = r.pool.Exec(ctx, q, inv.ID, inv.OwnerID, inv.ThreadID, inv.BookingID,
		inv.Filename, inv.Status, classification, inv.LastError, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *invoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	const q = `
SELECT id, owner_id, thread_id, booking_id, filename, status, classification, last_error, created_at, updated_at
FROM invoices WHERE id = $1;`

	var inv model.Invoice
	var statusStr string
	var classification []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&inv.ID, &inv.OwnerID, &inv.ThreadID, &inv.BookingID, &inv.Filename,
		&statusStr, &classification, &inv.LastError, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	inv.Status = model.ProcessingStatus(statusStr)
	inv.Classification, err = unmarshalClassification(classification)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	const q = `UPDATE invoices SET status = $2, last_error = $3, updated_at = $4 WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id, status, lastError, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) SaveResults(ctx context.Context, id string, c model.Classification) error {
	classification, err := marshalClassification(&c)
	if err != nil {
		return err
	}
	const q = `
UPDATE invoices
SET status = $2, classification = $3, last_error = '', updated_at = $4
WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id, model.ProcessingCompleted, classification, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
