// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage is the Storage Adapter: the durable record of graph
// snapshots, review history, and feedback that survives process
// restarts and backs the Graph Cache's cold tier.
package storage

import "context"

// ReviewRecord is one completed review run against a pull request.
type ReviewRecord struct {
	ID          string
	RepoID      string
	PRNumber    int
	CommitSHA   string
	Summary     string
	Verdict     string
	CreatedAt   int64 // unix seconds
	CheckpointID string
}

// CommentRecord is one comment the orchestrator posted during a review.
type CommentRecord struct {
	ID         string
	ReviewID   string
	FilePath   string
	Line       int
	Body       string
	Confidence float64
	Severity   string
	ContentHash string
	CreatedAt  int64
}

// FeedbackRecord is a rating a human left on a posted comment, used by
// the Retriever to prioritise future examples.
type FeedbackRecord struct {
	CommentID string
	Rating    string // "helpful", "unhelpful", "dismissed"
	Note      string
	CreatedAt int64
}

// SnapshotRecord is one durable graph snapshot for a (repoId, branch).
type SnapshotRecord struct {
	RepoID    string
	Branch    string
	Data      []byte // zstd-compressed JSON, see graph.Serialize
	UpdatedAt int64
}

// SymbolRecord is one graph.Symbol's durable row, scoped to a
// (repoId, branch) graph. The opaque SnapshotRecord blob lets the Graph
// Cache reload a whole graph in one read; the row-level symbols/edges
// tables exist alongside it so a single file's rows can be found and
// deleted by path without decoding that blob, per the incremental
// update path.
type SymbolRecord struct {
	ID            string
	RepoID        string
	Branch        string
	FilePath      string
	Name          string
	QualifiedName string
	Kind          string
	Signature     string
	BodyStart     int
	BodyEnd       int
	DocComment    string
}

// EdgeRecord is one graph.Edge's durable row, scoped to a
// (repoId, branch) graph.
type EdgeRecord struct {
	RepoID string
	Branch string
	From   string
	To     string
	Kind   string
}

// EmbeddingRecord notes the dimension of an embedding stored for a
// symbol; EmbeddingDim reads the dimension recorded for a repo back, so
// the Embedding Adapter can detect an embedding-model swap without
// querying the vector store.
type EmbeddingRecord struct {
	SymbolID  string
	RepoID    string
	Dim       int
	UpdatedAt int64
}

// Adapter is the durable-storage contract every component outside this
// package depends on, never the concrete sqlite type directly.
type Adapter interface {
	SaveSnapshot(ctx context.Context, rec SnapshotRecord) error
	LoadSnapshot(ctx context.Context, repoID, branch string) (SnapshotRecord, bool, error)
	DeleteSnapshot(ctx context.Context, repoID, branch string) error

	SaveSymbols(ctx context.Context, symbols []SymbolRecord) error
	DeleteSymbolsForFile(ctx context.Context, repoID, branch, filePath string) error
	DeleteSymbolsForRepo(ctx context.Context, repoID, branch string) error
	SaveEdges(ctx context.Context, repoID, branch string, edges []EdgeRecord) error

	SaveReview(ctx context.Context, rec ReviewRecord) error
	SaveComments(ctx context.Context, comments []CommentRecord) error
	RecentComments(ctx context.Context, repoID string, limit int) ([]CommentRecord, error)

	SaveFeedback(ctx context.Context, rec FeedbackRecord) error
	FeedbackForComment(ctx context.Context, commentID string) ([]FeedbackRecord, error)

	UpsertEmbeddingRecord(ctx context.Context, rec EmbeddingRecord) error
	EmbeddingDim(ctx context.Context, repoID string) (int, bool, error)
	DeleteEmbeddingDim(ctx context.Context, repoID string) error

	Close() error
}
