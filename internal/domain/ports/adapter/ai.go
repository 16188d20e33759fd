package adapter

import (
	"context"

	"freight-ai-assistant/internal/domain/model"
)

// GenerationResult carries the conversational reply together with an
// explicit control flag. The ready signal is structured, never parsed out of
// the display text.
type GenerationResult struct {
	ReadyToQuote bool
	Reply        string
}

// FieldExtractor converts free text into a partial shipment field update.
// Empty fields in the delta mean "no new information".
type FieldExtractor interface {
	Extract(ctx context.Context, snapshot model.ShipmentData, text string) (model.ShipmentDelta, error)
}

// Generator produces the assistant's next conversational reply given the
// message history and the current field snapshot.
type Generator interface {
	Generate(ctx context.Context, messages []model.Message, snapshot model.ShipmentData) (GenerationResult, error)
}

// DocumentClassifier detects a document's type and extracts structured
// fields. Implementations must not propagate model failures: on any error or
// unparseable output they return the safe unknown classification.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) model.Classification
}

// Embedder computes embedding vectors for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
