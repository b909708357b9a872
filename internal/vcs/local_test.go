// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalGetDiffDetectsModifiedAddedRemoved(t *testing.T) {
	base := t.TempDir()
	head := t.TempDir()

	writeFile(t, base, "a.go", "package a\nfunc A() {}\n")
	writeFile(t, base, "gone.go", "package a\nfunc Gone() {}\n")
	writeFile(t, head, "a.go", "package a\nfunc A() { println(\"x\") }\n")
	writeFile(t, head, "new.go", "package a\nfunc New() {}\n")

	l := NewLocal(base, head, PullRequest{Number: 1})
	changes, err := l.GetDiff(context.Background(), "repo-1", 1)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}

	byPath := map[string]FileChange{}
	for _, c := range changes {
		byPath[c.Path] = c
	}

	if c, ok := byPath["a.go"]; !ok || c.Status != "modified" {
		t.Errorf("a.go: got %+v, want status=modified", c)
	}
	if c, ok := byPath["new.go"]; !ok || c.Status != "added" {
		t.Errorf("new.go: got %+v, want status=added", c)
	}
	if c, ok := byPath["gone.go"]; !ok || c.Status != "removed" {
		t.Errorf("gone.go: got %+v, want status=removed", c)
	}
}

func TestLocalGetDiffSkipsIdenticalFiles(t *testing.T) {
	base := t.TempDir()
	head := t.TempDir()
	writeFile(t, base, "same.go", "package a\n")
	writeFile(t, head, "same.go", "package a\n")

	l := NewLocal(base, head, PullRequest{})
	changes, err := l.GetDiff(context.Background(), "repo-1", 1)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("GetDiff() returned %d changes for identical trees, want 0", len(changes))
	}
}
