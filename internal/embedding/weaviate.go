// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

// ClassName is the Weaviate class every symbol embedding is stored
// under, one object per (repoId, symbolId).
const ClassName = "AgnusSymbol"

// Weaviate is the Embedding Adapter backed by a Weaviate instance. Dim
// tracking is delegated to the Storage Adapter rather than re-derived
// from Weaviate's schema, so a single source of truth governs whether an
// embedding-model swap has occurred for a repo.
type Weaviate struct {
	client  *weaviate.Client
	storage storage.Adapter

	mu   sync.Mutex
	dims map[string]int // repoID -> dimension, cached from storage
}

// NewWeaviate wraps client, using store to persist and query the
// dimension recorded per repo.
func NewWeaviate(client *weaviate.Client, store storage.Adapter) *Weaviate {
	return &Weaviate{client: client, storage: store, dims: make(map[string]int)}
}

func (w *Weaviate) dimFor(ctx context.Context, repoID string) (int, bool, error) {
	w.mu.Lock()
	if d, ok := w.dims[repoID]; ok {
		w.mu.Unlock()
		return d, true, nil
	}
	w.mu.Unlock()

	dim, ok, err := w.storage.EmbeddingDim(ctx, repoID)
	if err != nil || !ok {
		return 0, ok, err
	}
	w.mu.Lock()
	w.dims[repoID] = dim
	w.mu.Unlock()
	return dim, true, nil
}

func (w *Weaviate) recordDim(ctx context.Context, repoID string, dim int) {
	w.mu.Lock()
	w.dims[repoID] = dim
	w.mu.Unlock()
}

// Upsert stores or replaces the given vectors. It rejects a batch mixing
// a new dimension with one already recorded for repoID; the caller
// (indexer) is expected to invalidate the repo's embeddings first when
// intentionally switching embedding models.
func (w *Weaviate) Upsert(ctx context.Context, vectors []Vector) error {
	for _, v := range vectors {
		existingDim, known, err := w.dimFor(ctx, v.RepoID)
		if err != nil {
			return fmt.Errorf("embedding: check existing dimension: %w", err)
		}
		if known && existingDim != len(v.Values) {
			return &ErrDimensionMismatch{RepoID: v.RepoID, Expected: existingDim, Got: len(v.Values)}
		}

		_, err = w.client.Data().Creator().
			WithClassName(ClassName).
			WithID(weaviateObjectID(v.RepoID, v.SymbolID)).
			WithVector(v.Values).
			WithProperties(map[string]any{
				"symbolId": v.SymbolID,
				"repoId":   v.RepoID,
				"filePath": v.FilePath,
				"text":     v.Text,
			}).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("embedding: upsert %s: %w", v.SymbolID, err)
		}

		if !known {
			rec := storage.EmbeddingRecord{SymbolID: v.SymbolID, RepoID: v.RepoID, Dim: len(v.Values), UpdatedAt: time.Now().Unix()}
			if err := w.storage.UpsertEmbeddingRecord(ctx, rec); err != nil {
				return fmt.Errorf("embedding: record dimension for repo %s: %w", v.RepoID, err)
			}
			w.recordDim(ctx, v.RepoID, len(v.Values))
		}
	}
	return nil
}

// Search performs a nearVector query scoped to repoID and returns the
// topK closest matches by cosine distance, scored as 1 - distance.
func (w *Weaviate) Search(ctx context.Context, repoID string, query []float32, topK int) ([]Match, error) {
	nearVector := w.client.GraphQL().NearVectorArgBuilder().WithVector(query)

	where := filters.Where().
		WithPath([]string{"repoId"}).
		WithOperator(filters.Equal).
		WithValueString(repoID)

	result, err := w.client.GraphQL().Get().
		WithClassName(ClassName).
		WithFields(
			graphql.Field{Name: "symbolId"},
			graphql.Field{Name: "repoId"},
			graphql.Field{Name: "filePath"},
			graphql.Field{Name: "text"},
			graphql.Field{Name: "_additional { distance }"},
		).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedding: search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("embedding: search returned GraphQL errors: %s", result.Errors[0].Message)
	}

	return parseMatches(result)
}

func (w *Weaviate) Delete(ctx context.Context, symbolIDs []string) error {
	for _, id := range symbolIDs {
		where := filters.Where().
			WithPath([]string{"symbolId"}).
			WithOperator(filters.Equal).
			WithValueString(id)
		_, err := w.client.Batch().ObjectsBatchDeleter().
			WithClassName(ClassName).
			WithWhere(where).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("embedding: delete %s: %w", id, err)
		}
	}
	return nil
}

func (w *Weaviate) Dim(ctx context.Context, repoID string) (int, bool, error) {
	return w.dimFor(ctx, repoID)
}

// DropCollection deletes every object belonging to repoID and forgets
// its recorded dimension, both in the local cache and in storage, so a
// subsequent Upsert starts a fresh collection at whatever dimension the
// new embedding model produces.
func (w *Weaviate) DropCollection(ctx context.Context, repoID string) error {
	where := filters.Where().
		WithPath([]string{"repoId"}).
		WithOperator(filters.Equal).
		WithValueString(repoID)
	if _, err := w.client.Batch().ObjectsBatchDeleter().
		WithClassName(ClassName).
		WithWhere(where).
		Do(ctx); err != nil {
		return fmt.Errorf("embedding: drop collection for repo %s: %w", repoID, err)
	}

	w.mu.Lock()
	delete(w.dims, repoID)
	w.mu.Unlock()

	if err := w.storage.DeleteEmbeddingDim(ctx, repoID); err != nil {
		return fmt.Errorf("embedding: clear recorded dimension for repo %s: %w", repoID, err)
	}
	return nil
}

func weaviateObjectID(repoID, symbolID string) string {
	return deterministicUUID(repoID + ":" + symbolID)
}

func parseMatches(result *models.GraphQLResponse) ([]Match, error) {
	data, ok := result.Data["Get"].(map[string]any)
	if !ok {
		return nil, nil
	}
	objects, ok := data[ClassName].([]any)
	if !ok {
		return nil, nil
	}

	out := make([]Match, 0, len(objects))
	for _, raw := range objects {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		m := Match{Vector: Vector{
			SymbolID: stringField(obj, "symbolId"),
			RepoID:   stringField(obj, "repoId"),
			FilePath: stringField(obj, "filePath"),
			Text:     stringField(obj, "text"),
		}}
		if additional, ok := obj["_additional"].(map[string]any); ok {
			if dist, ok := additional["distance"].(float64); ok {
				m.Score = 1 - dist
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
