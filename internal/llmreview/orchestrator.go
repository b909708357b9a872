// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
	"github.com/ivoyant-eng/AgnusAi/internal/diffengine"
	"github.com/ivoyant-eng/AgnusAi/internal/llm"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/retriever"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

// Orchestrator drives one pull request review end to end: fetch, gather
// context, prompt the model, parse, filter, validate, and post.
type Orchestrator struct {
	VCS       vcs.Adapter
	Retriever *retriever.Retriever
	LLM       llm.Backend
	Storage   storage.Adapter
	Logger    *logging.Logger
	Config    config.Config
	Skills    []Skill
}

// NewOrchestrator wires the components a review needs. skills may be nil.
func NewOrchestrator(vcsAdapter vcs.Adapter, r *retriever.Retriever, backend llm.Backend, store storage.Adapter, logger *logging.Logger, cfg config.Config, skills []Skill) *Orchestrator {
	return &Orchestrator{VCS: vcsAdapter, Retriever: r, LLM: backend, Storage: store, Logger: logger, Config: cfg, Skills: skills}
}

// Review runs the full non-incremental flow against repoID's pull
// request number: fetch the PR and diff, gather codebase context, build
// and send the prompt, parse the response, filter and validate the
// resulting comments, then post the review and persist its record.
func (o *Orchestrator) Review(ctx context.Context, repoID string, number int) (vcs.ReviewSubmission, error) {
	pr, err := o.VCS.GetPR(ctx, repoID, number)
	if err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: get PR: %w", err)
	}

	changes, err := o.VCS.GetDiff(ctx, repoID, number)
	if err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: get diff: %w", err)
	}

	diffs, changedFiles := buildDiffs(changes)
	diffText := renderDiff(diffs, 0)

	retrieved, err := o.Retriever.Retrieve(ctx, repoID, pr.HeadBranch, changes, o.Config.Review.Depth, diffText)
	if err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: retrieve context: %w", err)
	}

	submission, reviewID, err := o.runModelAndAssemble(ctx, changedFiles, diffs, retrieved)
	if err != nil {
		return vcs.ReviewSubmission{}, err
	}

	if err := o.VCS.SubmitReview(ctx, repoID, number, submission); err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: submit review: %w", err)
	}

	checkpointBody, err := RenderCheckpoint(Checkpoint{
		SHA: pr.HeadSHA, Timestamp: time.Now().Unix(),
		FilesReviewed: changedFiles, CommentCount: len(submission.Comments), Verdict: submission.Verdict,
	}, submission.Summary)
	if err != nil {
		o.Logger.Soft(ctx, logging.TagMalformedCheckpoint, "failed to render checkpoint, incremental review for this PR will fall back to full review", "repo", repoID, "pr", number, "error", err)
	} else if err := o.VCS.AddComment(ctx, repoID, number, checkpointBody); err != nil {
		o.Logger.Soft(ctx, logging.TagVCSError, "failed to post checkpoint comment", "repo", repoID, "pr", number, "error", err)
	}

	o.persistReview(ctx, repoID, number, pr.HeadSHA, reviewID, submission)
	return submission, nil
}

// ReviewIncremental looks up the last checkpoint comment on the PR. A
// missing or malformed checkpoint falls back to a full Review. A
// checkpoint at the current head SHA returns a "No new commits" summary
// without calling the model. A checkpoint at any older SHA also runs a
// full Review of the PR's whole current diff; the diff is not narrowed
// to the commits made after the checkpoint.
func (o *Orchestrator) ReviewIncremental(ctx context.Context, repoID string, number int) (vcs.ReviewSubmission, error) {
	pr, err := o.VCS.GetPR(ctx, repoID, number)
	if err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: get PR: %w", err)
	}

	bodies, err := o.VCS.ListComments(ctx, repoID, number)
	if err != nil {
		return vcs.ReviewSubmission{}, fmt.Errorf("llmreview: list comments: %w", err)
	}

	checkpoint, found, err := FindCheckpoint(bodies)
	if err != nil {
		o.Logger.Soft(ctx, logging.TagMalformedCheckpoint, "malformed checkpoint, falling back to full review", "repo", repoID, "pr", number, "error", err)
		return o.Review(ctx, repoID, number)
	}
	if !found {
		return o.Review(ctx, repoID, number)
	}
	if checkpoint.SHA == pr.HeadSHA {
		return vcs.ReviewSubmission{Summary: "No new commits since the last review.", Verdict: VerdictComment}, nil
	}

	return o.Review(ctx, repoID, number)
}

func (o *Orchestrator) runModelAndAssemble(ctx context.Context, changedFiles []string, diffs map[string]diffengine.Result, retrieved *retriever.Context) (vcs.ReviewSubmission, string, error) {
	deep := o.Config.Review.Depth == config.DepthDeep
	prompt := BuildPrompt(o.Skills, changedFiles, diffs, retrieved, deep, o.Config.Review.MaxDiffSize)

	raw, err := o.LLM.Complete(ctx, SystemPrompt(), prompt, llm.Params{})
	if err != nil {
		return vcs.ReviewSubmission{}, "", fmt.Errorf("llmreview: model completion: %w", err)
	}

	parsed := Parse(ctx, raw, o.Logger)
	filtered := Filter(parsed.Comments, o.Config.Review.ConfidenceThreshold)

	validated, err := ValidateAndDedupe(ctx, filtered, diffs, o.Storage, o.Logger)
	if err != nil {
		return vcs.ReviewSubmission{}, "", fmt.Errorf("llmreview: validate comments: %w", err)
	}

	reviewID := uuid.New().String()
	summary := parsed.Summary
	if len(validated) == 0 {
		summary += "\n\nNo significant issues found beyond confidence threshold."
	}

	submission := vcs.ReviewSubmission{Summary: summary, Verdict: parsed.Verdict}
	for _, c := range validated {
		submission.Comments = append(submission.Comments, vcs.InlineComment{
			FilePath: c.FilePath, Line: c.Line, Body: c.Body, Severity: c.Severity,
		})
	}

	return submission, reviewID, nil
}

func (o *Orchestrator) persistReview(ctx context.Context, repoID string, number int, headSHA, reviewID string, submission vcs.ReviewSubmission) {
	now := time.Now().Unix()

	if err := o.Storage.SaveReview(ctx, storage.ReviewRecord{
		ID: reviewID, RepoID: repoID, PRNumber: number, CommitSHA: headSHA,
		Summary: submission.Summary, Verdict: submission.Verdict, CreatedAt: now,
	}); err != nil {
		o.Logger.Soft(ctx, logging.TagStorageError, "failed to persist review record", "repo", repoID, "pr", number, "error", err)
	}

	if len(submission.Comments) == 0 {
		return
	}
	records := make([]storage.CommentRecord, 0, len(submission.Comments))
	for _, c := range submission.Comments {
		id := contentHash(c.FilePath, c.Line, c.Body)
		records = append(records, storage.CommentRecord{
			ID: id, ReviewID: reviewID, FilePath: c.FilePath, Line: c.Line,
			Body: c.Body, Severity: c.Severity, ContentHash: id, CreatedAt: now,
		})
	}
	if err := o.Storage.SaveComments(ctx, records); err != nil {
		o.Logger.Soft(ctx, logging.TagStorageError, "failed to persist comment records", "repo", repoID, "pr", number, "error", err)
	}
}

func buildDiffs(changes []vcs.FileChange) (map[string]diffengine.Result, []string) {
	diffs := make(map[string]diffengine.Result, len(changes))
	files := make([]string, 0, len(changes))
	for _, c := range changes {
		diffs[c.Path] = diffengine.Diff(c.Path, c.OldContent, c.NewContent)
		files = append(files, c.Path)
	}
	return diffs, files
}
