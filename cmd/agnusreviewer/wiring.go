// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
	"github.com/ivoyant-eng/AgnusAi/internal/embedding"
	"github.com/ivoyant-eng/AgnusAi/internal/feedback"
	"github.com/ivoyant-eng/AgnusAi/internal/graphcache"
	"github.com/ivoyant-eng/AgnusAi/internal/indexer"
	"github.com/ivoyant-eng/AgnusAi/internal/llm"
	"github.com/ivoyant-eng/AgnusAi/internal/llmreview"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/retriever"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

// components holds every long-lived collaborator wired from cfg, shared
// across the index, review, and serve subcommands.
type components struct {
	Logger  *logging.Logger
	Storage storage.Adapter
	Cache   *graphcache.Cache
	Vectors embedding.Adapter
	Signer  feedback.Signer
}

func buildComponents(cfg config.Config) (*components, error) {
	logger := logging.Default()

	store, err := storage.Open(cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	cache, err := graphcache.New(graphcache.Options{
		Storage:    store,
		HotTierDir: cfg.Storage.BadgerDir,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening graph cache: %w", err)
	}

	var vectors embedding.Adapter
	if cfg.Embedding.Enabled {
		client, err := weaviate.NewClient(weaviate.Config{
			Scheme: cfg.Embedding.Scheme,
			Host:   cfg.Embedding.Host,
		})
		if err != nil {
			return nil, fmt.Errorf("creating weaviate client: %w", err)
		}
		vectors = embedding.NewWeaviate(client, store)
	}

	signer := feedback.NewSigner(cfg.Feedback.BaseURL, cfg.Feedback.Secret)

	return &components{Logger: logger, Storage: store, Cache: cache, Vectors: vectors, Signer: signer}, nil
}

// buildEmbedder returns the indexer.Embedder matching cfg's embedding
// provider, or nil when embedding is disabled: a repo can always be
// indexed for graph traversal alone.
func buildEmbedder(cfg config.Config) indexer.Embedder {
	if !cfg.Embedding.Enabled {
		return nil
	}
	return indexer.NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), "")
}

func buildLLMBackend(cfg config.Config) (llm.Backend, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "openai":
		return llm.NewOpenAIBackend(os.Getenv("OPENAI_API_KEY"), cfg.LLM.Model, cfg.LLM.BaseURL), nil
	case "ollama":
		return llm.NewOllamaBackend(cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildRetriever(c *components, embedder indexer.Embedder) *retriever.Retriever {
	return retriever.New(c.Cache, c.Vectors, embedder, c.Storage, c.Logger)
}

func buildOrchestrator(c *components, vc vcs.Adapter, r *retriever.Retriever, backend llm.Backend, cfg config.Config) (*llmreview.Orchestrator, error) {
	skills, err := llmreview.LoadSkills(cfg.Review.SkillsDir)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	return llmreview.NewOrchestrator(vc, r, backend, c.Storage, c.Logger, cfg, skills), nil
}
