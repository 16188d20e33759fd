// Package vector talks to the external semantic index over its HTTP upsert
// API. Batches are independent; there is no transactional guarantee across
// them.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"freight-ai-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.VectorIndex = (*HTTPIndex)(nil)

type HTTPIndex struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPIndex(baseURL, apiKey string) (*HTTPIndex, error) {
	if baseURL == "" {
		return nil, errors.New("vector index base url empty")
	}
	return &HTTPIndex{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (v *HTTPIndex) UpsertBatch(ctx context.Context, index string, items []adapter.VectorItem) error {
	if len(items) == 0 {
		return nil
	}

	reqBody := struct {
		Index string               `json:"index"`
		Items []adapter.VectorItem `json:"items"`
	}{Index: index, Items: items}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encode upsert batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/vectors/upsert", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("vector upsert http %d", resp.StatusCode)
	}
	return nil
}
