// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import "sort"

// Graph is the in-memory adjacency structure for one (repoId, branch)
// pair. A Graph is not safe for concurrent modification; the Graph Cache
// (internal/graphcache) is the sole owner and serialises writers against
// readers with a per-(repo, branch) RWMutex.
type Graph struct {
	RepoID string
	Branch string

	symbols      map[string]Symbol
	outEdges     map[string][]Edge
	inEdges      map[string][]Edge
	nameToIDs    map[string]map[string]struct{}
	fileToIDs    map[string]map[string]struct{}
	pendingEdges []Edge // edges whose To is still a bare name
}

// New returns an empty Graph for the given repo and branch.
func New(repoID, branch string) *Graph {
	return &Graph{
		RepoID:    repoID,
		Branch:    branch,
		symbols:   make(map[string]Symbol),
		outEdges:  make(map[string][]Edge),
		inEdges:   make(map[string][]Edge),
		nameToIDs: make(map[string]map[string]struct{}),
		fileToIDs: make(map[string]map[string]struct{}),
	}
}

// AddSymbol upserts s by id, updating the name and file indices.
func (g *Graph) AddSymbol(s Symbol) {
	s.RepoID = g.RepoID
	s.Branch = g.Branch
	g.symbols[s.ID] = s

	if g.nameToIDs[s.Name] == nil {
		g.nameToIDs[s.Name] = make(map[string]struct{})
	}
	g.nameToIDs[s.Name][s.ID] = struct{}{}

	if g.fileToIDs[s.FilePath] == nil {
		g.fileToIDs[s.FilePath] = make(map[string]struct{})
	}
	g.fileToIDs[s.FilePath][s.ID] = struct{}{}
}

// AddEdge appends e to outEdges[e.From] and inEdges[e.To], unless the
// exact edge already exists (idempotent on exact duplicates). If e.To is
// not yet a known symbol id, the edge is held as pending until
// ResolveNames runs.
func (g *Graph) AddEdge(e Edge) {
	if _, isSymbol := g.symbols[e.To]; !isSymbol {
		g.pendingEdges = append(g.pendingEdges, e)
		return
	}
	g.addResolvedEdge(e)
}

func (g *Graph) addResolvedEdge(e Edge) {
	for _, existing := range g.outEdges[e.From] {
		if existing == e {
			return
		}
	}
	g.outEdges[e.From] = append(g.outEdges[e.From], e)
	g.inEdges[e.To] = append(g.inEdges[e.To], e)
}

// ResolveNames expands every pending bare-name edge into zero or more
// concrete edges, one per id in nameToIDs[name] other than the edge's own
// From (a symbol is never recorded as calling itself). Unresolvable edges
// (no symbol with that name) are discarded. Must be called at the end of a
// full index and after each incremental batch, per spec §4.2.
func (g *Graph) ResolveNames() {
	pending := g.pendingEdges
	g.pendingEdges = nil
	for _, e := range pending {
		ids, ok := g.nameToIDs[e.To]
		if !ok {
			continue
		}
		for id := range ids {
			if id == e.From {
				continue
			}
			g.addResolvedEdge(Edge{From: e.From, To: id, Kind: e.Kind})
		}
	}
}

// RemoveFile removes every symbol whose FilePath equals path, all of
// their outgoing edges, and prunes inEdges/outEdges referencing any
// removed id from either endpoint. The name and file indices are cleaned
// accordingly.
func (g *Graph) RemoveFile(path string) {
	ids := g.fileToIDs[path]
	if len(ids) == 0 {
		delete(g.fileToIDs, path)
		return
	}

	removed := make(map[string]struct{}, len(ids))
	for id := range ids {
		removed[id] = struct{}{}
		if sym, ok := g.symbols[id]; ok {
			if names := g.nameToIDs[sym.Name]; names != nil {
				delete(names, id)
				if len(names) == 0 {
					delete(g.nameToIDs, sym.Name)
				}
			}
		}
		delete(g.symbols, id)
		delete(g.outEdges, id)
		delete(g.inEdges, id)
	}
	delete(g.fileToIDs, path)

	for id, edges := range g.outEdges {
		g.outEdges[id] = filterEdges(edges, removed)
	}
	for id, edges := range g.inEdges {
		g.inEdges[id] = filterEdges(edges, removed)
	}

	kept := g.pendingEdges[:0:0]
	for _, e := range g.pendingEdges {
		if _, gone := removed[e.From]; gone {
			continue
		}
		kept = append(kept, e)
	}
	g.pendingEdges = kept
}

func filterEdges(edges []Edge, removed map[string]struct{}) []Edge {
	if len(edges) == 0 {
		return edges
	}
	kept := edges[:0]
	for _, e := range edges {
		_, fromGone := removed[e.From]
		_, toGone := removed[e.To]
		if fromGone || toGone {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// Symbol returns the symbol with the given id and whether it exists.
func (g *Graph) Symbol(id string) (Symbol, bool) {
	s, ok := g.symbols[id]
	return s, ok
}

// SymbolsInFile returns every symbol whose FilePath equals path.
func (g *Graph) SymbolsInFile(path string) []Symbol {
	ids := g.fileToIDs[path]
	out := make([]Symbol, 0, len(ids))
	for id := range ids {
		if s, ok := g.symbols[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SymbolCount returns the number of symbols currently in the graph.
func (g *Graph) SymbolCount() int { return len(g.symbols) }

// EdgeCount returns the number of resolved edges currently in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.outEdges {
		n += len(edges)
	}
	return n
}

// GetCallers returns every symbol reachable from id within hops inbound
// hops (i.e. via inEdges), excluding id itself, in BFS discovery order.
// hops <= 0 or an unknown id yields an empty slice; cycles are tolerated
// via an internal visited set.
func (g *Graph) GetCallers(id string, hops int) []Symbol {
	return g.bfs(id, hops, g.inEdges, func(e Edge) string { return e.From })
}

// GetCallees returns every symbol reachable from id within hops outbound
// hops (i.e. via outEdges), excluding id itself.
func (g *Graph) GetCallees(id string, hops int) []Symbol {
	return g.bfs(id, hops, g.outEdges, func(e Edge) string { return e.To })
}

func (g *Graph) bfs(seed string, hops int, adjacency map[string][]Edge, next func(Edge) string) []Symbol {
	if hops <= 0 {
		return nil
	}
	if _, ok := g.symbols[seed]; !ok {
		return nil
	}

	visited := map[string]struct{}{seed: {}}
	frontier := []string{seed}
	var result []Symbol

	for depth := 0; depth < hops && len(frontier) > 0; depth++ {
		var nextFrontier []string
		for _, cur := range frontier {
			for _, e := range adjacency[cur] {
				target := next(e)
				if _, seen := visited[target]; seen {
					continue
				}
				visited[target] = struct{}{}
				if sym, ok := g.symbols[target]; ok {
					result = append(result, sym)
				}
				nextFrontier = append(nextFrontier, target)
			}
		}
		frontier = nextFrontier
	}
	return result
}

// GetBlastRadius computes the 1-hop and 2-hop (non-direct) inbound caller
// sets for the union of ids, deduplicated across seeds, plus the
// affected-file union and a scalar risk score, per spec §3:
//
//	riskScore = min(100, 10*|direct| + 5*|affectedFiles|)
//
// multiplied by 1.5 (still capped at 100) when |affectedFiles| > 5.
func (g *Graph) GetBlastRadius(ids []string) BlastRadius {
	directSet := make(map[string]struct{})
	transitiveSet := make(map[string]struct{})

	for _, id := range ids {
		for _, s := range g.GetCallers(id, 1) {
			directSet[s.ID] = struct{}{}
		}
	}
	for _, id := range ids {
		for _, s := range g.GetCallers(id, 2) {
			if _, isDirect := directSet[s.ID]; isDirect {
				continue
			}
			transitiveSet[s.ID] = struct{}{}
		}
	}

	direct := g.symbolsOf(directSet)
	transitive := g.symbolsOf(transitiveSet)

	fileSet := make(map[string]struct{})
	for _, s := range direct {
		fileSet[s.FilePath] = struct{}{}
	}
	for _, s := range transitive {
		fileSet[s.FilePath] = struct{}{}
	}
	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	score := 10*len(direct) + 5*len(files)
	if len(files) > 5 {
		score = int(float64(score) * 1.5)
	}
	if score > 100 {
		score = 100
	}

	return BlastRadius{
		DirectCallers:     direct,
		TransitiveCallers: transitive,
		AffectedFiles:     files,
		RiskScore:         score,
		RiskLevel:         riskLevelFor(score),
	}
}

func (g *Graph) symbolsOf(ids map[string]struct{}) []Symbol {
	out := make([]Symbol, 0, len(ids))
	for id := range ids {
		if s, ok := g.symbols[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllSymbols returns every symbol in the graph, sorted by id.
func (g *Graph) AllSymbols() []Symbol {
	out := make([]Symbol, 0, len(g.symbols))
	for _, s := range g.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllEdges returns every resolved edge in the graph.
func (g *Graph) AllEdges() []Edge {
	var out []Edge
	for _, edges := range g.outEdges {
		out = append(out, edges...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
