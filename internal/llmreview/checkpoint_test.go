// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"reflect"
	"testing"
)

func TestRenderAndFindCheckpointRoundTrip(t *testing.T) {
	cp := Checkpoint{SHA: "abc123", Timestamp: 1000, FilesReviewed: []string{"a.go"}, CommentCount: 2, Verdict: VerdictComment}
	rendered, err := RenderCheckpoint(cp, "Reviewed 1 file, 2 comments.")
	if err != nil {
		t.Fatalf("RenderCheckpoint() error = %v", err)
	}

	got, found, err := FindCheckpoint([]string{"some unrelated comment", rendered})
	if err != nil {
		t.Fatalf("FindCheckpoint() error = %v", err)
	}
	if !found {
		t.Fatal("FindCheckpoint() found = false, want true")
	}
	if !reflect.DeepEqual(got, cp) {
		t.Errorf("FindCheckpoint() = %+v, want %+v", got, cp)
	}
}

func TestFindCheckpointNoneFound(t *testing.T) {
	_, found, err := FindCheckpoint([]string{"just a regular comment"})
	if err != nil {
		t.Fatalf("FindCheckpoint() error = %v", err)
	}
	if found {
		t.Error("FindCheckpoint() found = true, want false")
	}
}

func TestFindCheckpointMalformedPayloadIsError(t *testing.T) {
	_, _, err := FindCheckpoint([]string{"<!-- AGNUSAI_CHECKPOINT: {not valid json -->"})
	if err == nil {
		t.Error("FindCheckpoint() with malformed JSON should return an error, not silently ignore it")
	}
}
