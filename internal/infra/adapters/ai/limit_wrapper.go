package ai

import (
	"context"

	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
)

// Compile-time check
var _ Provider = (*limitedProvider)(nil)

type limitedProvider struct {
	inner Provider
	sem   chan struct{}
}

// NewLimited caps concurrent model calls across all ports of a provider to
// respect downstream API quotas.
func NewLimited(inner Provider, maxConcurrent int) Provider {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedProvider{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedProvider) Extract(ctx context.Context, snapshot model.ShipmentData, text string) (model.ShipmentDelta, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Extract(ctx, snapshot, text)
}

func (l *limitedProvider) Generate(ctx context.Context, messages []model.Message, snapshot model.ShipmentData) (adapter.GenerationResult, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, messages, snapshot)
}

func (l *limitedProvider) Classify(ctx context.Context, text string) model.Classification {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Classify(ctx, text)
}

func (l *limitedProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Embed(ctx, texts)
}
