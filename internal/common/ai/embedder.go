// internal/common/ai/embedder.go
package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/07Austs/talent2/internal/common/config"
)

// Embedder generates vector embeddings for candidate and job text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

type openAIEmbedder struct {
	embedder embeddings.Embedder
	model    string
}

// NewEmbedder creates an embedder backed by an OpenAI-compatible embeddings API.
func NewEmbedder(cfg config.EmbeddingsConfig) (Embedder, error) {
	opts := []openai.Option{
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	} else {
		// Local OpenAI-compatible services accept any token
		opts = append(opts, openai.WithToken("none"))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &openAIEmbedder{embedder: embedder, model: cfg.Model}, nil
}

func (e *openAIEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embeddings API returned no vectors")
	}
	return toFloat64(vectors[0]), nil
}

func (e *openAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	result := make([][]float64, len(vectors))
	for i, v := range vectors {
		result[i] = toFloat64(v)
	}
	return result, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
