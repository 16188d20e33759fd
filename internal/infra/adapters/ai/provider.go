package ai

import (
	"freight-ai-assistant/internal/domain/ports/adapter"
)

// Provider bundles the model-backed ports one backend implements: field
// extraction, reply generation, document classification and embeddings.
type Provider interface {
	adapter.FieldExtractor
	adapter.Generator
	adapter.DocumentClassifier
	adapter.Embedder
}
