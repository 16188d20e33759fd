package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
)

// Compile-time check
var _ Provider = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements extraction, generation, classification and
// embeddings on the OpenAI API.
type OpenAIAdapter struct {
	client     openai.Client
	chatModel  string
	embedModel string
	log        *zerolog.Logger
}

func NewOpenAIAdapter(apiKey, chatModel, embedModel string, log *zerolog.Logger) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		chatModel:  chatModel,
		embedModel: embedModel,
		log:        log,
	}, nil
}

// jsonChat runs one JSON-mode chat call and returns the raw reply text.
func (o *OpenAIAdapter) jsonChat(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.chatModel),
		Messages:    messages,
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIAdapter) Extract(ctx context.Context, snapshot model.ShipmentData, text string) (model.ShipmentDelta, error) {
	raw, err := o.jsonChat(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(extractionSystemPrompt),
		openai.UserMessage(extractionUserPrompt(snapshot, text)),
	})
	if err != nil {
		return model.ShipmentDelta{}, fmt.Errorf("openai extract: %w", err)
	}

	var delta model.ShipmentDelta
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &delta); err != nil {
		// Unparseable extraction output is treated exactly like a failed
		// call: the caller falls back to an empty delta.
		return model.ShipmentDelta{}, fmt.Errorf("openai extract decode: %w", err)
	}
	return delta, nil
}

func (o *OpenAIAdapter) Generate(ctx context.Context, messages []model.Message, snapshot model.ShipmentData) (adapter.GenerationResult, error) {
	prompt := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+2)
	prompt = append(prompt,
		openai.SystemMessage(generationSystemPrompt),
		openai.SystemMessage(generationContext(snapshot)),
	)
	for _, m := range messages {
		switch m.Role {
		case model.RoleAssistant:
			prompt = append(prompt, openai.AssistantMessage(m.Content))
		case model.RoleSystem:
			prompt = append(prompt, openai.SystemMessage(m.Content))
		default:
			prompt = append(prompt, openai.UserMessage(m.Content))
		}
	}

	raw, err := o.jsonChat(ctx, prompt)
	if err != nil {
		return adapter.GenerationResult{}, fmt.Errorf("openai generate: %w", err)
	}

	var out struct {
		ReadyToQuote bool   `json:"ready_to_quote"`
		Reply        string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &out); err != nil {
		// A malformed envelope still contains usable display text; never
		// treat it as ready-to-quote.
		return adapter.GenerationResult{Reply: raw}, nil
	}
	if out.Reply == "" {
		return adapter.GenerationResult{}, errors.New("openai generate: empty reply")
	}
	return adapter.GenerationResult{ReadyToQuote: out.ReadyToQuote, Reply: out.Reply}, nil
}

func (o *OpenAIAdapter) Classify(ctx context.Context, text string) model.Classification {
	raw, err := o.jsonChat(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(classificationSystemPrompt),
		openai.UserMessage(text),
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("classification call failed; using unknown fallback")
		return model.UnknownClassification()
	}

	var c model.Classification
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &c); err != nil || c.DocType == "" {
		o.log.Warn().Err(err).Msg("classification output unparseable; using unknown fallback")
		return model.UnknownClassification()
	}
	if c.Fields == nil {
		c.Fields = map[string]map[string]string{}
	}
	return c
}

func (o *OpenAIAdapter) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(o.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	out := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		if int(d.Index) < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}
