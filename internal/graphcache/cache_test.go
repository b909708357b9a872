// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphcache

import (
	"context"
	"testing"

	agnusgraph "github.com/ivoyant-eng/AgnusAi/internal/graph"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := storage.Open(t.TempDir(), logging.Default())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c, err := New(Options{Storage: db, Logger: logging.Default()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetCreatesEmptyGraphOnFirstAccess(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	g, unlock, err := c.Get(ctx, "repo-1", "main")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer unlock()

	if g.SymbolCount() != 0 {
		t.Errorf("SymbolCount() = %d, want 0 for a never-indexed repo", g.SymbolCount())
	}
}

func TestMutatePersistsAcrossGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.Mutate(ctx, "repo-1", "main", func(g *agnusgraph.Graph) error {
		g.AddSymbol(agnusgraph.Symbol{ID: "a.go#fn", FilePath: "a.go", Name: "fn", Kind: agnusgraph.KindFunction})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	g, unlock, err := c.Get(ctx, "repo-1", "main")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer unlock()
	if g.SymbolCount() != 1 {
		t.Errorf("SymbolCount() = %d, want 1 after Mutate", g.SymbolCount())
	}
}

func TestMutateSurvivesHotTierEviction(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Mutate(ctx, "repo-1", "main", func(g *agnusgraph.Graph) error {
		g.AddSymbol(agnusgraph.Symbol{ID: "a.go#fn", FilePath: "a.go", Name: "fn", Kind: agnusgraph.KindFunction})
		return nil
	}); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	// Simulate process restart: drop the in-process entry and the hot
	// tier, forcing a reload from the Storage Adapter's cold tier.
	c.mu.Lock()
	delete(c.entries, key{"repo-1", "main"})
	c.mu.Unlock()
	if err := c.hot.delete("repo-1", "main"); err != nil {
		t.Fatalf("hot.delete() error = %v", err)
	}

	g, unlock, err := c.Get(ctx, "repo-1", "main")
	if err != nil {
		t.Fatalf("Get() after eviction error = %v", err)
	}
	defer unlock()
	if g.SymbolCount() != 1 {
		t.Errorf("SymbolCount() after cold reload = %d, want 1", g.SymbolCount())
	}
}

func TestInvalidateClearsAllTiers(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Mutate(ctx, "repo-1", "main", func(g *agnusgraph.Graph) error {
		g.AddSymbol(agnusgraph.Symbol{ID: "a.go#fn", FilePath: "a.go", Name: "fn", Kind: agnusgraph.KindFunction})
		return nil
	}); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	if err := c.Invalidate(ctx, "repo-1", "main"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	g, unlock, err := c.Get(ctx, "repo-1", "main")
	if err != nil {
		t.Fatalf("Get() after invalidate error = %v", err)
	}
	defer unlock()
	if g.SymbolCount() != 0 {
		t.Errorf("SymbolCount() after Invalidate = %d, want 0", g.SymbolCount())
	}
}
