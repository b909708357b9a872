// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"context"
	"testing"

	"github.com/ivoyant-eng/AgnusAi/internal/diffengine"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

func newTestStorage(t *testing.T) storage.Adapter {
	t.Helper()
	store, err := storage.Open(t.TempDir(), logging.Default())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestValidateAndDedupeDropsUnknownPathAndLine(t *testing.T) {
	diffs := map[string]diffengine.Result{
		"a.go": diffengine.Diff("a.go", "line1\n", "line1\nline2\n"),
	}
	comments := []Comment{
		{FilePath: "a.go", Line: 2, Body: "fine"},    // line 2 was added
		{FilePath: "a.go", Line: 1, Body: "bad line"}, // line 1 is unchanged context
		{FilePath: "b.go", Line: 1, Body: "bad path"}, // not in diff at all
	}

	got, err := ValidateAndDedupe(context.Background(), comments, diffs, newTestStorage(t), logging.Default())
	if err != nil {
		t.Fatalf("ValidateAndDedupe() error = %v", err)
	}
	if len(got) != 1 || got[0].Line != 2 {
		t.Fatalf("ValidateAndDedupe() = %+v, want only the line-2 comment on a.go", got)
	}
}

func TestValidateAndDedupeDropsDuplicateFileLinePairs(t *testing.T) {
	diffs := map[string]diffengine.Result{
		"a.go": diffengine.Diff("a.go", "", "line1\n"),
	}
	comments := []Comment{
		{FilePath: "a.go", Line: 1, Body: "first take"},
		{FilePath: "a.go", Line: 1, Body: "second take on the same line"},
	}

	got, err := ValidateAndDedupe(context.Background(), comments, diffs, newTestStorage(t), logging.Default())
	if err != nil {
		t.Fatalf("ValidateAndDedupe() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1 (second duplicate dropped)", len(got))
	}
	if got[0].Body != "first take" {
		t.Errorf("got[0].Body = %q, want the first occurrence kept", got[0].Body)
	}
}

func TestValidateAndDedupeDropsPreviouslyDismissedComment(t *testing.T) {
	diffs := map[string]diffengine.Result{
		"a.go": diffengine.Diff("a.go", "", "line1\n"),
	}
	comment := Comment{FilePath: "a.go", Line: 1, Body: "flagged again"}
	id := contentHash("a.go", 1, "flagged again")

	store := newTestStorage(t)
	// review_feedback.comment_id references review_comments, so the
	// dismissed comment is stored first.
	if err := store.SaveReview(context.Background(), storage.ReviewRecord{ID: "rev-1", RepoID: "repo-1", PRNumber: 1, CommitSHA: "sha1", Summary: "s", Verdict: "comment", CreatedAt: 1}); err != nil {
		t.Fatalf("SaveReview() error = %v", err)
	}
	if err := store.SaveComments(context.Background(), []storage.CommentRecord{{ID: id, ReviewID: "rev-1", FilePath: "a.go", Line: 1, Body: "flagged again", Severity: "info", ContentHash: id, CreatedAt: 1}}); err != nil {
		t.Fatalf("SaveComments() error = %v", err)
	}
	if err := store.SaveFeedback(context.Background(), storage.FeedbackRecord{CommentID: id, Rating: "dismissed"}); err != nil {
		t.Fatalf("SaveFeedback() error = %v", err)
	}

	got, err := ValidateAndDedupe(context.Background(), []Comment{comment}, diffs, store, logging.Default())
	if err != nil {
		t.Fatalf("ValidateAndDedupe() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0 for a previously dismissed comment", len(got))
	}
}
