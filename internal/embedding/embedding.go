// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package embedding is the Embedding Adapter: vector storage and
// semantic search over symbol bodies and doc comments, used by the
// Retriever to find code related to a change beyond what the graph's
// direct edges can express.
package embedding

import "context"

// Vector is a symbol's embedding paired with the metadata the Retriever
// needs to re-rank and cite it without a second lookup.
type Vector struct {
	SymbolID string
	RepoID   string
	FilePath string
	Text     string // the text that was embedded, for prompt rendering
	Values   []float32
}

// Match is a semantic search hit with its similarity score: 1 minus the
// cosine distance, so 1 for an identical direction and lower as the
// vectors diverge.
type Match struct {
	Vector
	Score float64
}

// Adapter is the contract every component depends on. A dimension
// mismatch between a new embedding and previously stored ones for the
// same repo is an error the caller must handle by invalidating the
// existing index for that repo, per spec §4's embedding-model-swap
// handling: DropCollection, then force a full re-index. Silently
// dropping the offending batch and carrying on would leave the vector
// store in a mixed-dimension state, which spec §9 explicitly forbids.
type Adapter interface {
	Upsert(ctx context.Context, vectors []Vector) error
	Search(ctx context.Context, repoID string, query []float32, topK int) ([]Match, error)
	Delete(ctx context.Context, symbolIDs []string) error
	Dim(ctx context.Context, repoID string) (int, bool, error)
	// DropCollection deletes every vector stored for repoID and forgets
	// its recorded dimension, so the next Upsert for that repo starts a
	// fresh collection at whatever dimension it's given.
	DropCollection(ctx context.Context, repoID string) error
}

// ErrDimensionMismatch is returned by Upsert when a vector's dimension
// does not match the dimension already recorded for its repo.
type ErrDimensionMismatch struct {
	RepoID   string
	Expected int
	Got      int
}

func (e *ErrDimensionMismatch) Error() string {
	return "embedding: dimension mismatch for repo " + e.RepoID
}
