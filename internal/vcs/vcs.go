// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package vcs is the VCS Adapter contract: everything the Indexer,
// Retriever, and Review Orchestrator need from a hosted pull request
// without depending on a specific forge's API shape.
package vcs

import "context"

// PullRequest is a forge-agnostic view of one pull/merge request.
type PullRequest struct {
	Number     int
	Title      string
	Body       string
	HeadBranch string
	BaseBranch string
	HeadSHA    string
	BaseSHA    string
	Author     string
}

// FileChange is one file touched by a pull request.
type FileChange struct {
	Path       string
	OldPath    string // set only when Status == "renamed"
	Status     string // "added", "modified", "removed", "renamed"
	Additions  int
	Deletions  int
	OldContent string
	NewContent string
}

// InlineComment anchors review feedback to a specific line of a diff.
type InlineComment struct {
	FilePath   string
	Line       int
	Body       string
	Severity   string
}

// ReviewSubmission is the summary-plus-comments review posted back to
// the host once the Review Orchestrator has finished.
type ReviewSubmission struct {
	Summary  string
	Verdict  string // "approve", "comment", "request_changes"
	Comments []InlineComment
}

// LinkedTicket is an issue-tracker reference discovered in a pull
// request's title, body, or linked-issues API, as returned by
// Adapter.GetLinkedTickets. Nothing in the review core reads it; the
// retrieval context does not include tickets.
type LinkedTicket struct {
	ID          string
	Title       string
	Description string
}

// Adapter is the contract the review core depends on. It is implemented
// once per hosting platform (GitHub, GitLab, Gitea, ...); the review
// core itself never imports a forge SDK directly.
type Adapter interface {
	GetPR(ctx context.Context, repoID string, number int) (PullRequest, error)
	GetDiff(ctx context.Context, repoID string, number int) ([]FileChange, error)
	GetFiles(ctx context.Context, repoID, ref string) ([]string, error)
	GetFileContent(ctx context.Context, repoID, ref, path string) ([]byte, error)
	AddInlineComment(ctx context.Context, repoID string, number int, c InlineComment) error
	SubmitReview(ctx context.Context, repoID string, number int, r ReviewSubmission) error
	GetLinkedTickets(ctx context.Context, repoID string, number int) ([]LinkedTicket, error)

	// AddComment posts a top-level (non-inline) comment, used for the
	// incremental-review checkpoint marker.
	AddComment(ctx context.Context, repoID string, number int, body string) error

	// ListComments returns every top-level comment body on the pull
	// request, most recent first, so the Review Orchestrator can locate
	// an incremental-review checkpoint without a forge-specific query.
	ListComments(ctx context.Context, repoID string, number int) ([]string, error)
}
