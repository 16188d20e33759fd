package repository

import (
	"context"

	"freight-ai-assistant/internal/domain/model"
)

type DocumentRepository interface {
	Save(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id string) (*model.Document, error)
	UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error
	// SaveResults persists classification output and the chunk count after a
	// successful pipeline run.
	SaveResults(ctx context.Context, id string, c model.Classification, chunkCount int) error
}

type InvoiceRepository interface {
	Save(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error
	SaveResults(ctx context.Context, id string, c model.Classification) error
}
