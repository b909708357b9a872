// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package indexer

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingBatchSize is the number of symbol texts sent to the Embedder
// per request, balancing request overhead against payload size.
const EmbeddingBatchSize = 32

// Embedder turns symbol text (the doc comment, if any, followed by the
// signature) into a dense vector. It is a narrower contract than
// internal/llm.Backend: an indexing run only ever needs embeddings, never
// completions, and keeping the two separate lets the indexer run with no
// chat model configured at all.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls OpenAI's embeddings endpoint, grounded on the same
// go-openai client the LLM Backend uses for chat completions.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder builds an Embedder using apiKey and model. An empty
// model defaults to text-embedding-3-small.
func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel) *OpenAIEmbedder {
	if model == "" {
		model = openai.SmallEmbedding3
	}
	return &OpenAIEmbedder{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("indexer: embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		out[d.Index] = d.Embedding
	}
	return out, nil
}
