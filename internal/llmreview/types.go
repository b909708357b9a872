// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llmreview is the Review Orchestrator: it drives a single pull
// request review end to end, from gathering the diff through posting
// inline comments and a verdict, per spec §4.6.
package llmreview

// Comment is one candidate inline review comment, before and after the
// precision filter and path validation stages.
type Comment struct {
	FilePath   string
	Line       int
	Body       string
	Confidence *float64 // nil means the model omitted a confidence score
	Severity   string   // "error", "warning", "info"
}

// ParsedResponse is the structured form of one LLM completion, per the
// grammar in spec §4.6.1.
type ParsedResponse struct {
	Summary  string
	Comments []Comment
	Verdict  string // "approve", "request_changes", "comment"
}

// Severity levels, derived from keywords in a comment body.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Verdicts a parsed response may carry.
const (
	VerdictApprove        = "approve"
	VerdictRequestChanges = "request_changes"
	VerdictComment        = "comment"
)
