// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retriever

import (
	"context"
	"testing"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
	"github.com/ivoyant-eng/AgnusAi/internal/embedding"
	"github.com/ivoyant-eng/AgnusAi/internal/graph"
	"github.com/ivoyant-eng/AgnusAi/internal/graphcache"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeVectors struct {
	matches []embedding.Match
}

func (f *fakeVectors) Upsert(ctx context.Context, vectors []embedding.Vector) error { return nil }
func (f *fakeVectors) Search(ctx context.Context, repoID string, query []float32, topK int) ([]embedding.Match, error) {
	return f.matches, nil
}
func (f *fakeVectors) Delete(ctx context.Context, symbolIDs []string) error { return nil }
func (f *fakeVectors) Dim(ctx context.Context, repoID string) (int, bool, error) {
	return 3, true, nil
}
func (f *fakeVectors) DropCollection(ctx context.Context, repoID string) error { return nil }

func newTestRetriever(t *testing.T) (*Retriever, *graphcache.Cache, storage.Adapter) {
	t.Helper()
	db, err := storage.Open(t.TempDir(), logging.Default())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache, err := graphcache.New(graphcache.Options{Storage: db, Logger: logging.Default()})
	if err != nil {
		t.Fatalf("graphcache.New() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	r := New(cache, nil, nil, db, logging.Default())
	return r, cache, db
}

func seedGraph(t *testing.T, cache *graphcache.Cache, repoID, branch string) {
	t.Helper()
	err := cache.Mutate(context.Background(), repoID, branch, func(g *graph.Graph) error {
		g.AddSymbol(graph.Symbol{ID: "a.go:F", FilePath: "a.go", Name: "F", QualifiedName: "F", Kind: graph.KindFunction, Signature: "func F()"})
		g.AddSymbol(graph.Symbol{ID: "b.go:G", FilePath: "b.go", Name: "G", QualifiedName: "G", Kind: graph.KindFunction, Signature: "func G()"})
		g.AddSymbol(graph.Symbol{ID: "c.go:H", FilePath: "c.go", Name: "H", QualifiedName: "H", Kind: graph.KindFunction, Signature: "func H()"})
		g.AddEdge(graph.Edge{From: "a.go:F", To: "b.go:G", Kind: graph.EdgeCalls})
		g.AddEdge(graph.Edge{From: "c.go:H", To: "a.go:F", Kind: graph.EdgeCalls})
		g.ResolveNames()
		return nil
	})
	if err != nil {
		t.Fatalf("seedGraph: Mutate() error = %v", err)
	}
}

func TestRetrieveGraphOnlyFastDepth(t *testing.T) {
	r, cache, _ := newTestRetriever(t)
	seedGraph(t, cache, "repo-1", "main")

	changes := []vcs.FileChange{{Path: "a.go", Status: "modified"}}
	ctx, err := r.Retrieve(context.Background(), "repo-1", "main", changes, config.DepthFast, "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(ctx.ChangedSymbols) != 1 || ctx.ChangedSymbols[0].ID != "a.go:F" {
		t.Errorf("ChangedSymbols = %v, want [a.go:F]", ctx.ChangedSymbols)
	}
	if len(ctx.Callees) != 1 || ctx.Callees[0].ID != "b.go:G" {
		t.Errorf("Callees = %v, want [b.go:G]", ctx.Callees)
	}
	if len(ctx.Callers) != 1 || ctx.Callers[0].ID != "c.go:H" {
		t.Errorf("Callers = %v, want [c.go:H]", ctx.Callers)
	}
	if ctx.BlastRadius.RiskScore == 0 {
		t.Error("expected a non-zero blast radius risk score with a caller present")
	}
	if len(ctx.SemanticNeighbors) != 0 {
		t.Error("fast depth must never populate semantic neighbours")
	}

	rendered := ctx.Render(false)
	if rendered == "" {
		t.Error("Render() returned empty string")
	}
}

func TestRetrieveDeepDepthExcludesCallersFromSemanticNeighbors(t *testing.T) {
	r, cache, _ := newTestRetriever(t)
	seedGraph(t, cache, "repo-1", "main")

	// The vector search returns c.go:H, which the seeded c.go:H -> a.go:F
	// edge makes a caller of the changed symbol, and d.go:FAR, which has
	// no edge to it; only FAR may come back as a semantic neighbour.
	err := cache.Mutate(context.Background(), "repo-1", "main", func(g *graph.Graph) error {
		g.AddSymbol(graph.Symbol{ID: "c.go:H", FilePath: "c.go", Name: "H", QualifiedName: "H", Kind: graph.KindFunction})
		g.AddSymbol(graph.Symbol{ID: "d.go:FAR", FilePath: "d.go", Name: "FAR", QualifiedName: "FAR", Kind: graph.KindFunction})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	r.Embedder = &fakeEmbedder{}
	r.Vectors = &fakeVectors{matches: []embedding.Match{
		{Vector: embedding.Vector{SymbolID: "c.go:H", FilePath: "c.go"}, Score: 0.5},
		{Vector: embedding.Vector{SymbolID: "d.go:FAR", FilePath: "d.go"}, Score: 0.9},
	}}

	changes := []vcs.FileChange{{Path: "a.go", Status: "modified"}}
	ctx, err := r.Retrieve(context.Background(), "repo-1", "main", changes, config.DepthDeep, "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	// c.go:H is already a direct caller, so it must be excluded even
	// though the fake vector search returned it.
	for _, n := range ctx.SemanticNeighbors {
		if n.SymbolID == "c.go:H" {
			t.Error("semantic neighbours must exclude symbols already in Callers")
		}
	}
	if len(ctx.SemanticNeighbors) != 1 || ctx.SemanticNeighbors[0].SymbolID != "d.go:FAR" {
		t.Errorf("SemanticNeighbors = %v, want exactly [d.go:FAR]", ctx.SemanticNeighbors)
	}
}

func TestExampleCommentsSplitsAcceptedAndRejectedByFeedback(t *testing.T) {
	r, _, db := newTestRetriever(t)
	ctx := context.Background()

	if err := db.SaveReview(ctx, storage.ReviewRecord{ID: "rev-1", RepoID: "repo-1", PRNumber: 1, CommitSHA: "sha1", Summary: "s", Verdict: "comment", CreatedAt: 1}); err != nil {
		t.Fatalf("SaveReview() error = %v", err)
	}
	comments := []storage.CommentRecord{
		{ID: "c1", ReviewID: "rev-1", FilePath: "a.go", Line: 1, Body: "nil check missing\n\n---\n[👍 Helpful](http://x) [👎 Not helpful](http://y)", Confidence: 0.9, Severity: "warning", ContentHash: "h1", CreatedAt: 1},
		{ID: "c2", ReviewID: "rev-1", FilePath: "b.go", Line: 2, Body: "unused import", Confidence: 0.8, Severity: "info", ContentHash: "h2", CreatedAt: 2},
	}
	if err := db.SaveComments(ctx, comments); err != nil {
		t.Fatalf("SaveComments() error = %v", err)
	}
	if err := db.SaveFeedback(ctx, storage.FeedbackRecord{CommentID: "c1", Rating: "helpful", CreatedAt: 10}); err != nil {
		t.Fatalf("SaveFeedback() error = %v", err)
	}
	if err := db.SaveFeedback(ctx, storage.FeedbackRecord{CommentID: "c2", Rating: "unhelpful", CreatedAt: 11}); err != nil {
		t.Fatalf("SaveFeedback() error = %v", err)
	}

	r.Embedder = &fakeEmbedder{}
	prior, rejected, err := r.exampleComments(ctx, "repo-1", "diff text")
	if err != nil {
		t.Fatalf("exampleComments() error = %v", err)
	}

	if len(prior) != 1 || prior[0].FilePath != "a.go" {
		t.Errorf("prior = %v, want one example from a.go", prior)
	}
	if prior[0].Body != "nil check missing" {
		t.Errorf("prior[0].Body = %q, feedback links should be stripped", prior[0].Body)
	}
	if len(rejected) != 1 || rejected[0].FilePath != "b.go" {
		t.Errorf("rejected = %v, want one example from b.go", rejected)
	}
}
