// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"context"
	"strings"
	"testing"

	"github.com/ivoyant-eng/AgnusAi/internal/logging"
)

func TestParseExtractsSummaryCommentsAndVerdict(t *testing.T) {
	raw := `SUMMARY: Adds input validation to the upload handler.

[File: internal/upload/handler.go, Line: 42]
This doesn't check for a nil pointer before dereferencing.
[Confidence: 0.9]

[File: internal/upload/handler.go, Line: 58]
Minor: consider a named constant here.
[Confidence: 0.3]

VERDICT: request_changes`

	got := Parse(context.Background(), raw, logging.Default())

	if !strings.Contains(got.Summary, "Adds input validation") {
		t.Errorf("Summary = %q, want it to mention input validation", got.Summary)
	}
	if len(got.Comments) != 2 {
		t.Fatalf("len(Comments) = %d, want 2", len(got.Comments))
	}
	if got.Comments[0].Line != 42 || got.Comments[0].FilePath != "internal/upload/handler.go" {
		t.Errorf("Comments[0] = %+v, want line 42 in handler.go", got.Comments[0])
	}
	if got.Comments[0].Confidence == nil || *got.Comments[0].Confidence != 0.9 {
		t.Errorf("Comments[0].Confidence = %v, want 0.9", got.Comments[0].Confidence)
	}
	if got.Verdict != VerdictRequestChanges {
		t.Errorf("Verdict = %q, want %q", got.Verdict, VerdictRequestChanges)
	}
}

func TestParseDiscardsNonFiniteLineNumbers(t *testing.T) {
	raw := `SUMMARY: test

[File: a.go, Line: not-a-number]
should be dropped
[Confidence: 0.5]

[File: b.go, Line: 0]
also dropped, line must be >= 1
[Confidence: 0.5]

VERDICT: comment`

	got := Parse(context.Background(), raw, logging.Default())
	if len(got.Comments) != 0 {
		t.Fatalf("len(Comments) = %d, want 0, got %+v", len(got.Comments), got.Comments)
	}
}

func TestParseSkipsEmptyBodyBlocks(t *testing.T) {
	raw := `SUMMARY: test

[File: a.go, Line: 1]
[Confidence: 0.5]

VERDICT: comment`

	got := Parse(context.Background(), raw, logging.Default())
	if len(got.Comments) != 0 {
		t.Fatalf("len(Comments) = %d, want 0 for an empty-body block", len(got.Comments))
	}
}

func TestParseDerivesSeverityFromKeywords(t *testing.T) {
	raw := `SUMMARY: test

[File: a.go, Line: 1]
Critical: this leaks a file descriptor on every call.
[Confidence: 0.9]

[File: a.go, Line: 2]
Major: this will panic on an empty slice.
[Confidence: 0.9]

[File: a.go, Line: 3]
Nit: prefer a blank line here.
[Confidence: 0.9]

VERDICT: request_changes`

	got := Parse(context.Background(), raw, logging.Default())
	if len(got.Comments) != 3 {
		t.Fatalf("len(Comments) = %d, want 3", len(got.Comments))
	}
	want := []string{SeverityError, SeverityWarning, SeverityInfo}
	for i, w := range want {
		if got.Comments[i].Severity != w {
			t.Errorf("Comments[%d].Severity = %q, want %q", i, got.Comments[i].Severity, w)
		}
	}
}

func TestParseDefaultsVerdictWhenAbsent(t *testing.T) {
	raw := `SUMMARY: test, no verdict line at all`
	got := Parse(context.Background(), raw, logging.Default())
	if got.Verdict != VerdictComment {
		t.Errorf("Verdict = %q, want default %q", got.Verdict, VerdictComment)
	}
}
