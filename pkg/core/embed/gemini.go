package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultEmbedModel = "gemini-embedding-001"

// geminiDimensions matches the default output size of the Gemini embedding
// models; the index rejects vectors of any other length.
const geminiDimensions = 768

// GeminiEmbedder calls the Gemini embedding API via the official GenAI SDK.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder builds the embedder. The client is created once and
// reused across calls.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	if model == "" {
		model = defaultEmbedModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// EmbedText returns the embedding vector for one text span.
func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	dims := int32(geminiDimensions)
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dims},
	)
	if err != nil {
		return nil, fmt.Errorf("embed content failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embed content returned no vector")
	}
	return resp.Embeddings[0].Values, nil
}

func (e *GeminiEmbedder) Dimensions() int {
	return geminiDimensions
}
