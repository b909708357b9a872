// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retriever

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
	"github.com/ivoyant-eng/AgnusAi/internal/embedding"
	"github.com/ivoyant-eng/AgnusAi/internal/graph"
	"github.com/ivoyant-eng/AgnusAi/internal/graphcache"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

// Embedder turns text into a dense vector. Declared locally rather than
// imported from internal/indexer so the Retriever never depends on the
// indexing pipeline for what is, from its point of view, a one-method
// contract: embed a query string.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// semanticTopK is the number of semantic-neighbour candidates fetched
// before graph-distance re-ranking trims the result, per spec §4.4 step 6c.
const semanticTopK = 10

// diffEmbedChars is how much of the raw diff is embedded when ranking
// prior examples, per spec §4.4 step 7.
const diffEmbedChars = 8000

// Retriever assembles a Context for one (repoId, branch) pull request.
// Vectors and Embedder may be nil, in which case semantic neighbours and
// prior/rejected examples are always empty — the system degrades to a
// graph-only context rather than failing.
type Retriever struct {
	Cache    *graphcache.Cache
	Vectors  embedding.Adapter
	Embedder Embedder
	Storage  storage.Adapter
	Logger   *logging.Logger
}

// New returns a ready-to-use Retriever.
func New(cache *graphcache.Cache, vectors embedding.Adapter, embedder Embedder, store storage.Adapter, logger *logging.Logger) *Retriever {
	return &Retriever{Cache: cache, Vectors: vectors, Embedder: embedder, Storage: store, Logger: logger}
}

func hopsForDepth(depth config.ReviewDepth) int {
	if depth == config.DepthFast {
		return 1
	}
	return 2
}

// Retrieve runs the full §4.4 algorithm: changed symbols, BFS-bounded
// callers/callees, blast radius, graph-distance re-ranked semantic
// neighbours at depth "deep", and prior/rejected example comments at any
// depth when an Embedder, a Storage adapter and a non-empty diffText are
// all present.
// diffText is the raw diff rendered for the PR (see internal/diffengine),
// used only to seed the prior-example embedding query.
func (r *Retriever) Retrieve(ctx context.Context, repoID, branch string, changes []vcs.FileChange, depth config.ReviewDepth, diffText string) (*Context, error) {
	g, unlock, err := r.Cache.Get(ctx, repoID, branch)
	if err != nil {
		return nil, err
	}
	defer unlock()

	changedPaths := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		changedPaths[c.Path] = struct{}{}
		if c.OldPath != "" {
			changedPaths[c.OldPath] = struct{}{}
		}
	}

	var changedSymbols []graph.Symbol
	for path := range changedPaths {
		changedSymbols = append(changedSymbols, g.SymbolsInFile(path)...)
	}
	sort.Slice(changedSymbols, func(i, j int) bool { return changedSymbols[i].ID < changedSymbols[j].ID })

	ids := make([]string, 0, len(changedSymbols))
	for _, s := range changedSymbols {
		ids = append(ids, s.ID)
	}

	hops := hopsForDepth(depth)
	callers := dedupSymbols(func(id string) []graph.Symbol { return g.GetCallers(id, hops) }, ids)
	callees := dedupSymbols(func(id string) []graph.Symbol { return g.GetCallees(id, 1) }, ids)

	result := &Context{
		ChangedSymbols: changedSymbols,
		Callers:        excludeIDs(callers, ids),
		Callees:        excludeIDs(callees, ids),
		BlastRadius:    g.GetBlastRadius(ids),
	}

	if depth == config.DepthDeep && r.Embedder != nil && r.Vectors != nil && len(changedSymbols) > 0 {
		neighbors, err := r.semanticNeighbors(ctx, g, repoID, changedSymbols, result)
		if err != nil {
			r.Logger.Soft(ctx, logging.TagEmbeddingFailure, "semantic neighbour lookup failed, continuing without it", "repo", repoID, "error", err)
		} else {
			result.SemanticNeighbors = neighbors
		}
	}

	if r.Embedder != nil && r.Storage != nil && diffText != "" {
		prior, rejected, err := r.exampleComments(ctx, repoID, diffText)
		if err != nil {
			r.Logger.Soft(ctx, logging.TagEmbeddingFailure, "prior-example retrieval failed, continuing without examples", "repo", repoID, "error", err)
		} else {
			result.PriorExamples = prior
			result.RejectedExamples = rejected
		}
	}

	return result, nil
}

func dedupSymbols(fetch func(string) []graph.Symbol, seeds []string) []graph.Symbol {
	seen := make(map[string]struct{})
	var out []graph.Symbol
	for _, id := range seeds {
		for _, s := range fetch(id) {
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func excludeIDs(symbols []graph.Symbol, exclude []string) []graph.Symbol {
	excl := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excl[id] = struct{}{}
	}
	out := symbols[:0:0]
	for _, s := range symbols {
		if _, ok := excl[s.ID]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// semanticNeighbors implements spec §4.4 step 6: average the changed
// symbols' signature+docComment embeddings into one query vector, search
// the repo's vector index, then re-rank by sim * 1/(graphDistance+1).
func (r *Retriever) semanticNeighbors(ctx context.Context, g *graph.Graph, repoID string, changed []graph.Symbol, result *Context) ([]embedding.Match, error) {
	texts := make([]string, len(changed))
	for i, s := range changed {
		texts[i] = s.Signature
		if s.DocComment != "" {
			texts[i] += "\n" + s.DocComment
		}
	}
	vectors, err := r.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	query := averageUnitNormalize(vectors)
	if query == nil {
		return nil, nil
	}

	matches, err := r.Vectors.Search(ctx, repoID, query, semanticTopK)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]struct{})
	for _, s := range result.ChangedSymbols {
		exclude[s.ID] = struct{}{}
	}
	for _, s := range result.Callers {
		exclude[s.ID] = struct{}{}
	}
	for _, s := range result.Callees {
		exclude[s.ID] = struct{}{}
	}

	changedIDs := make([]string, len(changed))
	for i, s := range changed {
		changedIDs[i] = s.ID
	}

	type ranked struct {
		match embedding.Match
		score float64
	}
	var candidates []ranked
	for _, m := range matches {
		if _, skip := exclude[m.SymbolID]; skip {
			continue
		}
		dist := graphDistance(g, m.SymbolID, changedIDs)
		combined := m.Score * (1.0 / float64(dist+1))
		candidates = append(candidates, ranked{match: m, score: combined})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]embedding.Match, len(candidates))
	for i, c := range candidates {
		out[i] = c.match
		out[i].Score = c.score
	}
	return out, nil
}

// graphDistance returns the minimum hop count from candidateID to any of
// seeds via either in- or out-edges, capped at 3 when no path exists
// within 2 hops.
func graphDistance(g *graph.Graph, candidateID string, seeds []string) int {
	hop1 := make(map[string]struct{})
	for _, seed := range seeds {
		for _, s := range g.GetCallers(seed, 1) {
			hop1[s.ID] = struct{}{}
		}
		for _, s := range g.GetCallees(seed, 1) {
			hop1[s.ID] = struct{}{}
		}
	}
	if _, ok := hop1[candidateID]; ok {
		return 1
	}

	hop2 := make(map[string]struct{})
	for _, seed := range seeds {
		for _, s := range g.GetCallers(seed, 2) {
			hop2[s.ID] = struct{}{}
		}
		for _, s := range g.GetCallees(seed, 2) {
			hop2[s.ID] = struct{}{}
		}
	}
	if _, ok := hop2[candidateID]; ok {
		return 2
	}
	return 3
}

func averageUnitNormalize(vectors [][]float32) []float32 {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil
	}
	dim := len(vectors[0])
	avg := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			avg[i] += float64(x)
		}
	}
	n := float64(len(vectors))
	var norm float64
	for i := range avg {
		avg[i] /= n
		norm += avg[i] * avg[i]
	}
	norm = math.Sqrt(norm)
	out := make([]float32, dim)
	if norm == 0 {
		return out
	}
	for i, x := range avg {
		out[i] = float32(x / norm)
	}
	return out
}

// exampleComments implements spec §4.4 step 7: embed the first 8,000
// characters of the diff, then rank previously posted comments for this
// repo by cosine similarity, split into accepted and rejected by their
// latest feedback signal.
func (r *Retriever) exampleComments(ctx context.Context, repoID, diffText string) ([]ExampleComment, []ExampleComment, error) {
	if len(diffText) > diffEmbedChars {
		diffText = diffText[:diffEmbedChars]
	}

	comments, err := r.Storage.RecentComments(ctx, repoID, 500)
	if err != nil {
		return nil, nil, err
	}
	if len(comments) == 0 {
		return nil, nil, nil
	}

	texts := make([]string, 0, len(comments)+1)
	texts = append(texts, diffText)
	for _, c := range comments {
		texts = append(texts, c.Body)
	}
	vectors, err := r.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, err
	}
	queryVec := vectors[0]

	var scoredComments []ratedComment
	for i, c := range comments {
		rating, err := r.latestRating(ctx, c.ID)
		if err != nil {
			r.Logger.Soft(ctx, logging.TagStorageError, "feedback lookup failed", "comment", c.ID, "error", err)
			continue
		}
		if rating == "" {
			continue
		}
		scoredComments = append(scoredComments, ratedComment{
			comment: c,
			score:   cosineSimilarity(queryVec, vectors[i+1]),
			rating:  rating,
		})
	}

	var accepted, rejected []ratedComment
	for _, s := range scoredComments {
		if s.rating == "helpful" {
			accepted = append(accepted, s)
		} else {
			rejected = append(rejected, s)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].score > accepted[j].score })
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].score > rejected[j].score })

	prior := toExamples(accepted, 5)
	notHelpful := toExamples(rejected, 3)
	return prior, notHelpful, nil
}

// ratedComment pairs a posted comment with its similarity score to the
// current diff and its latest human feedback rating.
type ratedComment struct {
	comment storage.CommentRecord
	score   float64
	rating  string
}

func toExamples(in []ratedComment, limit int) []ExampleComment {
	if len(in) > limit {
		in = in[:limit]
	}
	out := make([]ExampleComment, 0, len(in))
	for _, s := range in {
		out = append(out, ExampleComment{
			FilePath: s.comment.FilePath,
			Body:     stripFeedbackLinks(s.comment.Body),
			Score:    s.score,
		})
	}
	return out
}

// latestRating returns the most recent feedback rating recorded for
// commentID, mapped to "helpful" or "unhelpful"; an empty string means
// no feedback has been recorded yet, so the comment is excluded from
// both example lists.
func (r *Retriever) latestRating(ctx context.Context, commentID string) (string, error) {
	feedback, err := r.Storage.FeedbackForComment(ctx, commentID)
	if err != nil {
		return "", err
	}
	if len(feedback) == 0 {
		return "", nil
	}
	latest := feedback[0]
	for _, f := range feedback[1:] {
		if f.CreatedAt > latest.CreatedAt {
			latest = f
		}
	}
	if latest.Rating == "helpful" {
		return "helpful", nil
	}
	return "unhelpful", nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// stripFeedbackLinks removes a trailing markdown feedback-signal block
// (a "---" rule followed by a "[👍 Helpful]" link, see internal/feedback)
// from a stored comment body, if present, before the comment is replayed
// into a prompt as an example. No code path in this module appends that
// block to the comments it posts, so bodies are usually returned as is.
func stripFeedbackLinks(body string) string {
	idx := strings.Index(body, "\n\n---\n[👍 Helpful]")
	if idx == -1 {
		return body
	}
	return strings.TrimRight(body[:idx], "\n")
}
