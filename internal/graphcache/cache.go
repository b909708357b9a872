// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graphcache owns the lifecycle of every in-memory symbol graph:
// one *graph.Graph per (repoId, branch), tiered RAM -> BadgerDB -> the
// Storage Adapter's durable sqlite tables, with a reader/writer lock per
// (repoId, branch) pair so a review's traversals never block on another
// branch's re-index.
package graphcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	agnusgraph "github.com/ivoyant-eng/AgnusAi/internal/graph"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

type key struct {
	repoID string
	branch string
}

// entry holds one loaded graph plus the lock serialising its writers
// (indexing) against its readers (retrieval, review). The lock lives
// here, not on graph.Graph itself, so the Graph stays a plain data
// structure with no notion of the cache that owns it.
type entry struct {
	mu    sync.RWMutex
	graph *agnusgraph.Graph
}

// Cache is the Graph Cache: the single place every other component asks
// for a repo's current graph.
type Cache struct {
	storage storage.Adapter
	hot     *hotTier
	logger  *logging.Logger

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu      sync.Mutex
	entries map[key]*entry
}

// Options configures a Cache.
type Options struct {
	Storage storage.Adapter
	// HotTierDir, if empty, runs the BadgerDB hot tier in memory. Only
	// appropriate for short-lived CLI invocations; a long-lived
	// indexing daemon should set this so the hot tier survives restart.
	HotTierDir string
	Logger     *logging.Logger
}

// New opens the hot tier and returns a ready-to-use Cache.
func New(opts Options) (*Cache, error) {
	hot, err := openHotTier(opts.HotTierDir, opts.Logger)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("graphcache: init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("graphcache: init zstd decoder: %w", err)
	}

	return &Cache{
		storage: opts.Storage,
		hot:     hot,
		logger:  opts.Logger,
		encoder: enc,
		decoder: dec,
		entries: make(map[key]*entry),
	}, nil
}

func (c *Cache) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	return c.hot.close()
}

func (c *Cache) entryFor(repoID, branch string) *entry {
	k := key{repoID, branch}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		return e
	}
	e := &entry{}
	c.entries[k] = e
	return e
}

// Get returns the graph for (repoID, branch), loading it from the hot
// tier or cold storage on first access. Callers hold the returned
// unlock function until they are done reading.
func (c *Cache) Get(ctx context.Context, repoID, branch string) (*agnusgraph.Graph, func(), error) {
	e := c.entryFor(repoID, branch)
	e.mu.RLock()

	if e.graph != nil {
		return e.graph, e.mu.RUnlock, nil
	}

	// Upgrade to a write lock to load, without holding the read lock
	// across an I/O call.
	e.mu.RUnlock()
	e.mu.Lock()
	if e.graph == nil {
		g, err := c.load(ctx, repoID, branch)
		if err != nil {
			e.mu.Unlock()
			return nil, nil, err
		}
		e.graph = g
	}
	e.mu.Unlock()

	e.mu.RLock()
	return e.graph, e.mu.RUnlock, nil
}

// Mutate runs fn with exclusive write access to the (repoID, branch)
// graph, persisting the result to both tiers afterward. fn may create
// the graph for a repo seen for the first time by receiving a fresh,
// empty *graph.Graph.
func (c *Cache) Mutate(ctx context.Context, repoID, branch string, fn func(*agnusgraph.Graph) error) error {
	e := c.entryFor(repoID, branch)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		g, err := c.load(ctx, repoID, branch)
		if err != nil {
			return err
		}
		e.graph = g
	}

	if err := fn(e.graph); err != nil {
		return err
	}
	return c.persist(ctx, e.graph)
}

// Invalidate drops a (repoID, branch) graph from every tier, forcing the
// next Get or Mutate to rebuild it from scratch.
func (c *Cache) Invalidate(ctx context.Context, repoID, branch string) error {
	e := c.entryFor(repoID, branch)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = nil

	if err := c.hot.delete(repoID, branch); err != nil {
		return err
	}
	return c.storage.DeleteSnapshot(ctx, repoID, branch)
}

func (c *Cache) load(ctx context.Context, repoID, branch string) (*agnusgraph.Graph, error) {
	if raw, ok, err := c.hot.get(repoID, branch); err != nil {
		return nil, err
	} else if ok {
		g, err := c.decode(raw)
		if err != nil {
			c.logger.Soft(ctx, logging.TagStorageError, "hot-tier snapshot corrupt, falling back to cold storage", "repo", repoID, "branch", branch, "error", err)
		} else {
			return g, nil
		}
	}

	rec, ok, err := c.storage.LoadSnapshot(ctx, repoID, branch)
	if err != nil {
		return nil, fmt.Errorf("graphcache: load cold snapshot: %w", err)
	}
	if !ok {
		return agnusgraph.New(repoID, branch), nil
	}

	g, err := c.decode(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("graphcache: decode cold snapshot: %w", err)
	}
	return g, nil
}

func (c *Cache) persist(ctx context.Context, g *agnusgraph.Graph) error {
	compressed, err := c.encode(g)
	if err != nil {
		return err
	}

	if err := c.hot.put(g.RepoID, g.Branch, compressed); err != nil {
		c.logger.Soft(ctx, logging.TagStorageError, "hot-tier write failed", "repo", g.RepoID, "branch", g.Branch, "error", err)
	}

	return c.storage.SaveSnapshot(ctx, storage.SnapshotRecord{
		RepoID:    g.RepoID,
		Branch:    g.Branch,
		Data:      compressed,
		UpdatedAt: time.Now().Unix(),
	})
}

func (c *Cache) encode(g *agnusgraph.Graph) ([]byte, error) {
	raw, err := g.Serialize()
	if err != nil {
		return nil, fmt.Errorf("graphcache: serialize graph: %w", err)
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *Cache) decode(compressed []byte) (*agnusgraph.Graph, error) {
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("graphcache: zstd decode: %w", err)
	}
	return agnusgraph.Deserialize(raw)
}
