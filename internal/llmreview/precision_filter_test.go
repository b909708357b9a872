// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import "testing"

func ptr(f float64) *float64 { return &f }

func TestFilterDropsBelowThreshold(t *testing.T) {
	comments := []Comment{
		{FilePath: "a.go", Line: 1, Confidence: ptr(0.9)},
		{FilePath: "a.go", Line: 2, Confidence: ptr(0.5)},
		{FilePath: "a.go", Line: 3, Confidence: nil},
	}
	got := Filter(comments, 0.7)
	if len(got) != 2 {
		t.Fatalf("len(Filter(...)) = %d, want 2, got %+v", len(got), got)
	}
	if got[0].Line != 1 || got[1].Line != 3 {
		t.Errorf("Filter kept lines %d, %d, want 1 and 3", got[0].Line, got[1].Line)
	}
}

func TestFilterAllBelowThresholdReturnsEmptyNotNil(t *testing.T) {
	comments := []Comment{{FilePath: "a.go", Line: 1, Confidence: ptr(0.1)}}
	got := Filter(comments, 0.7)
	if len(got) != 0 {
		t.Fatalf("len(Filter(...)) = %d, want 0", len(got))
	}
	if got == nil {
		t.Error("Filter(...) = nil, want an empty non-nil slice")
	}
}
