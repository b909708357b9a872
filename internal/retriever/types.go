// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retriever is the Retriever: it turns a pull request's changed
// files into a bounded bundle of graph and semantic context the Review
// Orchestrator feeds to the language model, per spec §4.4.
package retriever

import (
	"github.com/ivoyant-eng/AgnusAi/internal/embedding"
	"github.com/ivoyant-eng/AgnusAi/internal/graph"
)

// ExampleComment is a previously posted comment surfaced as a prior
// example, stripped of any host UI artefacts (feedback links).
type ExampleComment struct {
	FilePath string
	Body     string
	Score    float64
}

// Context is the Review-Context bundle handed to the prompt builder.
type Context struct {
	ChangedSymbols    []graph.Symbol
	Callers           []graph.Symbol
	Callees           []graph.Symbol
	BlastRadius       graph.BlastRadius
	SemanticNeighbors []embedding.Match
	PriorExamples     []ExampleComment
	RejectedExamples  []ExampleComment
}
