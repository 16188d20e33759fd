package adapter

import "context"

// VectorItem is one chunk prepared for indexing.
type VectorItem struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Embedding []float64         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// VectorIndex is the upsert contract for the external semantic index.
// There is no transactional guarantee across batches.
type VectorIndex interface {
	UpsertBatch(ctx context.Context, index string, items []VectorItem) error
}
