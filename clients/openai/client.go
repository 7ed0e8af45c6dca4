package openai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"chatmirror/config"
	"chatmirror/core"
)

// OpenAIEmbeddingClient implements clients.EmbeddingClient using an
// OpenAI-compatible embedding API via langchaingo.
type OpenAIEmbeddingClient struct {
	embedder embeddings.Embedder
}

// NewOpenAIEmbeddingClient creates an embedding client from the OpenAI config
func NewOpenAIEmbeddingClient(cfg config.OpenAIConfig) (*OpenAIEmbeddingClient, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIEmbeddingClient{embedder: embedder}, nil
}

// Embed generates a vector embedding for one text unit. An empty or
// whitespace-only result is tagged as a data error so callers can skip the
// single item.
func (c *OpenAIEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, core.NewPipelineError(
			core.ErrorKindDataInvalid,
			fmt.Errorf("cannot embed empty text"),
		)
	}

	vectors, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, core.NewPipelineError(
			core.ErrorKindDataInvalid,
			fmt.Errorf("embedding request failed: %w", err),
		)
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, core.NewPipelineError(
			core.ErrorKindDataInvalid,
			fmt.Errorf("embedding provider returned empty result"),
		)
	}

	return vectors[0], nil
}
