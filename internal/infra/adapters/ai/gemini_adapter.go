package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
)

var _ Provider = (*GeminiAdapter)(nil)

// GeminiAdapter is the alternate backend on the Gemini SDK.
type GeminiAdapter struct {
	client     *genai.Client
	chatModel  string
	embedModel string
	log        *zerolog.Logger
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, chatModel string, log *zerolog.Logger) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if chatModel == "" {
		chatModel = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:     c,
		chatModel:  chatModel,
		embedModel: "text-embedding-004",
		log:        log,
	}, nil
}

func (g *GeminiAdapter) jsonCall(ctx context.Context, system string, contents []*genai.Content) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func (g *GeminiAdapter) Extract(ctx context.Context, snapshot model.ShipmentData, text string) (model.ShipmentDelta, error) {
	raw, err := g.jsonCall(ctx, extractionSystemPrompt, []*genai.Content{
		genai.NewContentFromText(extractionUserPrompt(snapshot, text), genai.RoleUser),
	})
	if err != nil {
		return model.ShipmentDelta{}, fmt.Errorf("gemini extract: %w", err)
	}
	var delta model.ShipmentDelta
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &delta); err != nil {
		return model.ShipmentDelta{}, fmt.Errorf("gemini extract decode: %w", err)
	}
	return delta, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, messages []model.Message, snapshot model.ShipmentData) (adapter.GenerationResult, error) {
	contents := make([]*genai.Content, 0, len(messages)+1)
	contents = append(contents, genai.NewContentFromText(generationContext(snapshot), genai.RoleUser))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	raw, err := g.jsonCall(ctx, generationSystemPrompt, contents)
	if err != nil {
		return adapter.GenerationResult{}, fmt.Errorf("gemini generate: %w", err)
	}

	var out struct {
		ReadyToQuote bool   `json:"ready_to_quote"`
		Reply        string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &out); err != nil {
		return adapter.GenerationResult{Reply: raw}, nil
	}
	if out.Reply == "" {
		return adapter.GenerationResult{}, errors.New("gemini generate: empty reply")
	}
	return adapter.GenerationResult{ReadyToQuote: out.ReadyToQuote, Reply: out.Reply}, nil
}

func (g *GeminiAdapter) Classify(ctx context.Context, text string) model.Classification {
	raw, err := g.jsonCall(ctx, classificationSystemPrompt, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("classification call failed; using unknown fallback")
		return model.UnknownClassification()
	}
	var c model.Classification
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &c); err != nil || c.DocType == "" {
		g.log.Warn().Err(err).Msg("classification output unparseable; using unknown fallback")
		return model.UnknownClassification()
	}
	if c.Fields == nil {
		c.Fields = map[string]map[string]string{}
	}
	return c
}

func (g *GeminiAdapter) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	out := make([][]float64, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		vec := make([]float64, len(e.Values))
		for i, v := range e.Values {
			vec[i] = float64(v)
		}
		out = append(out, vec)
	}
	return out, nil
}
