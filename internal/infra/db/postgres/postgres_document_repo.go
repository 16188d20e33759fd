package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/repository"
)

var _ repository.DocumentRepository = (*documentRepo)(nil)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

func (r *documentRepo) Save(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	classification, err := marshalClassification(doc.Classification)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO documents (id, owner_id, filename, status, classification, chunk_count, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  classification = EXCLUDED.classification,
  chunk_count = EXCLUDED.chunk_count,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`

	_, err = r.pool.Exec(ctx, q, doc.ID, doc.OwnerID, doc.Filename, doc.Status,
		classification, doc.ChunkCount, doc.LastError, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *documentRepo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
SELECT id, owner_id, filename, status, classification, chunk_count, last_error, created_at, updated_at
FROM documents WHERE id = $1;`

	var doc model.Document
	var statusStr string
	var classification []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&doc.ID, &doc.OwnerID, &doc.Filename, &statusStr, &classification,
		&doc.ChunkCount, &doc.LastError, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	doc.Status = model.ProcessingStatus(statusStr)
	doc.Classification, err = unmarshalClassification(classification)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	const q = `UPDATE documents SET status = $2, last_error = $3, updated_at = $4 WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id, status, lastError, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) SaveResults(ctx context.Context, id string, c model.Classification, chunkCount int) error {
	classification, err := marshalClassification(&c)
	if err != nil {
		return err
	}
	const q = `
UPDATE documents
SET status = $2, classification = $3, chunk_count = $4, last_error = '', updated_at = $5
WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id, model.ProcessingCompleted, classification, chunkCount, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func marshalClassification(c *model.Classification) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func unmarshalClassification(b []byte) (*model.Classification, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var c model.Classification
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
