// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package indexer builds and maintains the symbol graph and its semantic
// embeddings, end to end: walking a repository (or a pull request's
// changed files), dispatching each file to the Parser Registry, folding
// the result into the Graph Cache, and batching symbol text through an
// Embedder into the Embedding Adapter.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ivoyant-eng/AgnusAi/internal/astx"
	"github.com/ivoyant-eng/AgnusAi/internal/embedding"
	"github.com/ivoyant-eng/AgnusAi/internal/graph"
	"github.com/ivoyant-eng/AgnusAi/internal/graphcache"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

var tracer = otel.Tracer("agnusreviewer.indexer")

// parseWorkers caps how many files are read and parsed concurrently
// during a full index run.
const parseWorkers = 8

// Indexer orchestrates a full or incremental index run. Embedder and
// Vectors may both be nil, in which case a run builds the symbol graph
// only and skips the embedding phase entirely — the deployment mode with
// semantic search disabled (spec §4, Embedding.Enabled = false). Storage
// may also be nil in tests that only exercise in-memory graph behaviour;
// every production caller wires a real Storage Adapter so symbols and
// edges survive a process restart independently of the Graph Cache's
// opaque snapshot blob.
type Indexer struct {
	Registry *astx.Registry
	Cache    *graphcache.Cache
	Embedder Embedder
	Vectors  embedding.Adapter
	Storage  storage.Adapter
	Logger   *logging.Logger
}

// New builds an Indexer from its collaborators.
func New(registry *astx.Registry, cache *graphcache.Cache, embedder Embedder, vectors embedding.Adapter, store storage.Adapter, logger *logging.Logger) *Indexer {
	return &Indexer{Registry: registry, Cache: cache, Embedder: embedder, Vectors: vectors, Storage: store, Logger: logger}
}

type symbolBatch struct {
	ids   []string
	files []string
	texts []string
}

func (b *symbolBatch) add(filePath string, rs astx.RawSymbol) {
	b.ids = append(b.ids, rs.ID)
	b.files = append(b.files, filePath)
	b.texts = append(b.texts, symbolText(rs))
}

func symbolText(rs astx.RawSymbol) string {
	if rs.DocComment == "" {
		return rs.Signature
	}
	return rs.DocComment + "\n" + rs.Signature
}

func toGraphSymbol(rs astx.RawSymbol) graph.Symbol {
	return graph.Symbol{
		ID:            rs.ID,
		FilePath:      rs.FilePath,
		Name:          rs.Name,
		QualifiedName: rs.QualifiedName,
		Kind:          graph.SymbolKind(rs.Kind),
		Signature:     rs.Signature,
		BodyStart:     rs.BodyRange.Start,
		BodyEnd:       rs.BodyRange.End,
		DocComment:    rs.DocComment,
	}
}

func toSymbolRecord(repoID, branch string, rs astx.RawSymbol) storage.SymbolRecord {
	return storage.SymbolRecord{
		ID:            rs.ID,
		RepoID:        repoID,
		Branch:        branch,
		FilePath:      rs.FilePath,
		Name:          rs.Name,
		QualifiedName: rs.QualifiedName,
		Kind:          string(rs.Kind),
		Signature:     rs.Signature,
		BodyStart:     rs.BodyRange.Start,
		BodyEnd:       rs.BodyRange.End,
		DocComment:    rs.DocComment,
	}
}

// ErrReindexRequired is returned by Full/Incremental when an embedding
// dimension mismatch forced embedBatch to drop and recreate repoID's
// vector collection mid-run. The symbol graph is fully up to date; only
// the embedding index is incomplete. The caller must run Full again
// (not Incremental, which would only add the still-unprocessed files'
// embeddings on top of an already-partial collection).
type ErrReindexRequired struct {
	RepoID string
	Err    error
}

func (e *ErrReindexRequired) Error() string {
	return fmt.Sprintf("indexer: vector store for repo %s was dropped after a dimension mismatch; a full re-index is required: %v", e.RepoID, e.Err)
}

func (e *ErrReindexRequired) Unwrap() error { return e.Err }

func toEdgeRecords(repoID, branch string, edges []graph.Edge) []storage.EdgeRecord {
	out := make([]storage.EdgeRecord, len(edges))
	for i, e := range edges {
		out[i] = storage.EdgeRecord{RepoID: repoID, Branch: branch, From: e.From, To: e.To, Kind: string(e.Kind)}
	}
	return out
}

func emit(progress chan<- Progress, p Progress) {
	if progress == nil {
		return
	}
	progress <- p
}

// fileParse is one file's parsed (or failed-to-read) content, indexed so
// the parallel read/parse stage can merge back in a deterministic order.
type fileParse struct {
	path   string
	result *astx.ParseResult
}

// Full rebuilds repoID/branch's entire graph and embedding index from
// the ref's full file listing, discarding whatever graph previously
// existed for that (repoId, branch) pair. Reading and parsing files runs
// concurrently (bounded by parseWorkers); folding the results into the
// graph is serial, since graph.Graph itself is not concurrency-safe.
func (ix *Indexer) Full(ctx context.Context, repoID, branch string, vc vcs.Adapter, progress chan<- Progress) error {
	ctx, span := tracer.Start(ctx, "indexer.Full", trace.WithAttributes(
		attribute.String("repo_id", repoID),
		attribute.String("branch", branch),
	))
	defer span.End()

	files, err := vc.GetFiles(ctx, repoID, branch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return fmt.Errorf("indexer: list files: %w", err)
	}

	if err := ix.Cache.Invalidate(ctx, repoID, branch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return fmt.Errorf("indexer: invalidate prior graph: %w", err)
	}
	if ix.Storage != nil {
		if err := ix.Storage.DeleteSymbolsForRepo(ctx, repoID, branch); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(progress, Progress{Phase: PhaseError, Err: err})
			return fmt.Errorf("indexer: clear prior symbols/edges: %w", err)
		}
	}

	total := len(files)
	parsed := make([]fileParse, total)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parseWorkers)
	for i, f := range files {
		i, f := i, f
		group.Go(func() error {
			content, err := vc.GetFileContent(groupCtx, repoID, branch, f)
			if err != nil {
				ix.Logger.Soft(ctx, logging.TagVCSError, "read file failed during full index", "file", f, "error", err)
				filesParsedTotal.WithLabelValues("error").Inc()
				return nil
			}
			parsed[i] = fileParse{path: f, result: ix.parseFile(ctx, f, content)}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return fmt.Errorf("indexer: parallel parse: %w", err)
	}

	batch := &symbolBatch{}
	err = ix.Cache.Mutate(ctx, repoID, branch, func(g *graph.Graph) error {
		for i, fp := range parsed {
			if fp.result != nil {
				ix.applyParseResult(ctx, g, batch, fp.path, fp.result)
			}
			emit(progress, Progress{Phase: PhaseParsing, FilesTotal: total, FilesDone: i + 1, SymbolsFound: g.SymbolCount()})
		}
		g.ResolveNames()
		if ix.Storage != nil {
			if err := ix.Storage.SaveEdges(ctx, repoID, branch, toEdgeRecords(repoID, branch, g.AllEdges())); err != nil {
				return fmt.Errorf("save edges: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return fmt.Errorf("indexer: mutate graph: %w", err)
	}

	if err := ix.embedBatch(ctx, repoID, batch, progress); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return err
	}

	symbolsIndexedTotal.Add(float64(len(batch.ids)))
	span.SetAttributes(attribute.Int("files_total", total), attribute.Int("symbols_found", len(batch.ids)))
	span.SetStatus(codes.Ok, "")
	emit(progress, Progress{Phase: PhaseDone, FilesTotal: total, FilesDone: total})
	return nil
}

// Incremental folds a pull request's changed files into repoID/branch's
// existing graph: each touched file's old symbols are dropped and, for
// added/modified files, reparsed content is inserted in their place.
// Content comes directly from changes rather than a second VCS round
// trip, since the caller (the review orchestrator) already has it from
// GetDiff.
func (ix *Indexer) Incremental(ctx context.Context, repoID, branch string, changes []vcs.FileChange, progress chan<- Progress) error {
	ctx, span := tracer.Start(ctx, "indexer.Incremental", trace.WithAttributes(
		attribute.String("repo_id", repoID),
		attribute.String("branch", branch),
		attribute.Int("changed_files", len(changes)),
	))
	defer span.End()

	total := len(changes)
	parsed := make([]fileParse, total)

	var group errgroup.Group
	group.SetLimit(parseWorkers)
	for i, c := range changes {
		i, c := i, c
		if c.Status == "removed" {
			continue
		}
		group.Go(func() error {
			parsed[i] = fileParse{path: c.Path, result: ix.parseFile(ctx, c.Path, []byte(c.NewContent))}
			return nil
		})
	}
	_ = group.Wait() // parseFile never returns an error; goroutines only populate parsed[i]

	batch := &symbolBatch{}
	var staleIDs []string

	err := ix.Cache.Mutate(ctx, repoID, branch, func(g *graph.Graph) error {
		for i, c := range changes {
			paths := []string{c.Path}
			if c.OldPath != "" && c.OldPath != c.Path {
				paths = append(paths, c.OldPath)
			}
			for _, p := range paths {
				for _, s := range g.SymbolsInFile(p) {
					staleIDs = append(staleIDs, s.ID)
				}
				g.RemoveFile(p)
				if ix.Storage != nil {
					if err := ix.Storage.DeleteSymbolsForFile(ctx, repoID, branch, p); err != nil {
						ix.Logger.Soft(ctx, logging.TagStorageError, "delete stale symbols/edges failed", "repo", repoID, "file", p, "error", err)
					}
				}
			}

			if fp := parsed[i]; fp.result != nil {
				ix.applyParseResult(ctx, g, batch, c.Path, fp.result)
			}
			emit(progress, Progress{Phase: PhaseParsing, FilesTotal: total, FilesDone: i + 1, SymbolsFound: g.SymbolCount()})
		}
		g.ResolveNames()
		if ix.Storage != nil {
			if err := ix.Storage.SaveEdges(ctx, repoID, branch, toEdgeRecords(repoID, branch, g.AllEdges())); err != nil {
				return fmt.Errorf("save edges: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return fmt.Errorf("indexer: mutate graph: %w", err)
	}

	if ix.Vectors != nil && len(staleIDs) > 0 {
		if err := ix.Vectors.Delete(ctx, staleIDs); err != nil {
			ix.Logger.Soft(ctx, logging.TagEmbeddingFailure, "delete stale embeddings failed", "repo", repoID, "error", err)
		}
	}

	if err := ix.embedBatch(ctx, repoID, batch, progress); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		emit(progress, Progress{Phase: PhaseError, Err: err})
		return err
	}

	symbolsIndexedTotal.Add(float64(len(batch.ids)))
	span.SetStatus(codes.Ok, "")
	emit(progress, Progress{Phase: PhaseDone, FilesTotal: total, FilesDone: total})
	return nil
}

// parseFile dispatches filePath to the Parser Registry, recording the
// files_parsed_total outcome. A nil result (no parser for this
// extension, or a fully empty file) is a normal "skipped" outcome, not
// an error.
func (ix *Indexer) parseFile(ctx context.Context, filePath string, content []byte) *astx.ParseResult {
	result, err := ix.Registry.Parse(filePath, content)
	if err != nil {
		ix.Logger.Soft(ctx, logging.TagParseError, "parse failed", "file", filePath, "error", err)
		filesParsedTotal.WithLabelValues("error").Inc()
		return nil
	}
	if result == nil {
		filesParsedTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	for _, diag := range result.Errors {
		ix.Logger.Soft(ctx, logging.TagParseError, "partial parse", "file", filePath, "detail", diag)
	}
	filesParsedTotal.WithLabelValues("ok").Inc()
	return result
}

func (ix *Indexer) applyParseResult(ctx context.Context, g *graph.Graph, batch *symbolBatch, filePath string, result *astx.ParseResult) {
	records := make([]storage.SymbolRecord, 0, len(result.Symbols))
	for _, rs := range result.Symbols {
		g.AddSymbol(toGraphSymbol(rs))
		batch.add(filePath, rs)
		records = append(records, toSymbolRecord(g.RepoID, g.Branch, rs))
	}
	for _, re := range result.Edges {
		g.AddEdge(graph.Edge{From: re.From, To: re.To, Kind: graph.EdgeKind(re.Kind)})
	}
	if ix.Storage != nil && len(records) > 0 {
		if err := ix.Storage.SaveSymbols(ctx, records); err != nil {
			ix.Logger.Soft(ctx, logging.TagStorageError, "save symbols failed", "file", filePath, "error", err)
		}
	}
}

// embedBatch runs batch's collected symbol texts through Embedder in
// chunks of EmbeddingBatchSize and upserts the results. A dimension
// mismatch (an embedding model swap mid-repo) is never silently
// truncated: the repo's whole vector collection is dropped and
// recreated, and embedBatch returns ErrReindexRequired so the caller
// knows this run's embeddings are incomplete and a full Full() reindex
// is needed, per spec §9.
func (ix *Indexer) embedBatch(ctx context.Context, repoID string, batch *symbolBatch, progress chan<- Progress) error {
	if ix.Embedder == nil || ix.Vectors == nil || len(batch.ids) == 0 {
		return nil
	}

	total := len(batch.ids)
	for start := 0; start < total; start += EmbeddingBatchSize {
		end := start + EmbeddingBatchSize
		if end > total {
			end = total
		}

		vectors, err := ix.Embedder.Embed(ctx, batch.texts[start:end])
		if err != nil {
			ix.Logger.Soft(ctx, logging.TagEmbeddingFailure, "embed batch failed", "repo", repoID, "error", err)
			continue
		}

		upsert := make([]embedding.Vector, 0, len(vectors))
		for j, values := range vectors {
			upsert = append(upsert, embedding.Vector{
				SymbolID: batch.ids[start+j],
				RepoID:   repoID,
				FilePath: batch.files[start+j],
				Text:     batch.texts[start+j],
				Values:   values,
			})
		}

		if err := ix.Vectors.Upsert(ctx, upsert); err != nil {
			var mismatch *embedding.ErrDimensionMismatch
			if errors.As(err, &mismatch) {
				ix.Logger.Soft(ctx, logging.TagEmbeddingFailure, "embedding dimension mismatch, dropping and recreating vector store", "repo", repoID, "error", err)
				if dropErr := ix.Vectors.DropCollection(ctx, repoID); dropErr != nil {
					return fmt.Errorf("indexer: drop vector collection after dimension mismatch: %w", dropErr)
				}
				return &ErrReindexRequired{RepoID: repoID, Err: mismatch}
			}
			return fmt.Errorf("indexer: upsert embeddings: %w", err)
		}

		emit(progress, Progress{Phase: PhaseEmbedding, EmbeddingTotal: total, EmbeddingDone: end})
	}
	return nil
}
