// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package diffengine

import (
	"strconv"
	"strings"
	"testing"
)

func TestDiffIdentical(t *testing.T) {
	r := Diff("a.go", "package a\n", "package a\n")
	if !r.Identical {
		t.Error("Diff() on identical content did not report Identical")
	}
	if r.Render() != "" {
		t.Error("Render() on identical content should be empty")
	}
}

func TestDiffSingleLineInsert(t *testing.T) {
	old := "func a() {\n\treturn\n}\n"
	new := "func a() {\n\tlog.Info()\n\treturn\n}\n"

	r := Diff("a.go", old, new)
	if r.LinesAdded != 1 || r.LinesRemoved != 0 {
		t.Errorf("LinesAdded=%d LinesRemoved=%d, want 1/0", r.LinesAdded, r.LinesRemoved)
	}
	if !strings.Contains(r.Render(), "+[Line 2] \tlog.Info()") {
		t.Errorf("Render() missing annotated insert line: %s", r.Render())
	}
}

func TestDiffSingleLineDelete(t *testing.T) {
	old := "a\nb\nc\n"
	new := "a\nc\n"
	r := Diff("f.txt", old, new)
	if r.LinesRemoved != 1 || r.LinesAdded != 0 {
		t.Errorf("LinesRemoved=%d LinesAdded=%d, want 1/0", r.LinesRemoved, r.LinesAdded)
	}
}

func TestDiffSeparateHunksForDistantChanges(t *testing.T) {
	var oldBuilder, newBuilder strings.Builder
	for i := 0; i < 50; i++ {
		oldBuilder.WriteString("line\n")
		newBuilder.WriteString("line\n")
	}
	old := strings.ReplaceAll(oldBuilder.String(), "", "")
	oldLines := strings.Split(strings.TrimRight(old, "\n"), "\n")
	newLines := make([]string, len(oldLines))
	copy(newLines, oldLines)
	oldLines[2] = "changed-near-top"
	newLines[2] = "changed-near-top-2"
	oldLines[47] = "changed-near-bottom"
	newLines[47] = "changed-near-bottom-2"

	r := Diff("f.txt", strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n")
	if len(r.Hunks) != 2 {
		t.Errorf("got %d hunks, want 2 for two distant changes", len(r.Hunks))
	}
}

func TestDiffFallsBackBeyondMaxEditDistance(t *testing.T) {
	var oldBuilder, newBuilder strings.Builder
	n := MaxEditDistance + 500
	for i := 0; i < n; i++ {
		oldBuilder.WriteString("old-unique-line-")
		oldBuilder.WriteString(strconv.Itoa(i))
		oldBuilder.WriteString("\n")
		newBuilder.WriteString("new-unique-line-")
		newBuilder.WriteString(strconv.Itoa(i))
		newBuilder.WriteString("\n")
	}

	r := Diff("huge.txt", oldBuilder.String(), newBuilder.String())
	if !r.Fallback {
		t.Error("Diff() over MaxEditDistance should set Fallback=true")
	}
	if r.LinesAdded != n || r.LinesRemoved != n {
		t.Errorf("fallback LinesAdded=%d LinesRemoved=%d, want %d/%d", r.LinesAdded, r.LinesRemoved, n, n)
	}
}
