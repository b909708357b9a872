// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"encoding/json"
	"fmt"
)

// snapshot is the byte-exact wire format for Graph.Serialize. Symbols and
// edges are flattened to slices so the cyclic adjacency structure never
// has to be traversed in pointer form; ResolveNames has already run by
// the time a graph is snapshotted, so Edges contains only resolved
// id-to-id edges and there is nothing pending to persist.
type snapshot struct {
	Version int      `json:"version"`
	RepoID  string   `json:"repoId"`
	Branch  string   `json:"branch"`
	Symbols []Symbol `json:"symbols"`
	Edges   []Edge   `json:"edges"`
}

const snapshotVersion = 1

// Serialize produces a byte-exact JSON snapshot of the graph: every
// symbol and every resolved edge, sorted deterministically so that two
// snapshots taken from logically identical graphs are byte-identical.
// Pending (unresolved) edges are dropped; callers must run ResolveNames
// first if they want those edges preserved.
func (g *Graph) Serialize() ([]byte, error) {
	snap := snapshot{
		Version: snapshotVersion,
		RepoID:  g.RepoID,
		Branch:  g.Branch,
		Symbols: g.AllSymbols(),
		Edges:   g.AllEdges(),
	}
	return json.Marshal(snap)
}

// Deserialize rebuilds a Graph from bytes produced by Serialize. It
// rejects snapshots written by an incompatible format version.
func Deserialize(data []byte) (*Graph, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("graph: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("graph: unsupported snapshot version %d (want %d)", snap.Version, snapshotVersion)
	}

	g := New(snap.RepoID, snap.Branch)
	for _, s := range snap.Symbols {
		g.AddSymbol(s)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e)
	}
	return g, nil
}
