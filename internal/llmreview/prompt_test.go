// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"strings"
	"testing"

	"github.com/ivoyant-eng/AgnusAi/internal/diffengine"
	"github.com/ivoyant-eng/AgnusAi/internal/retriever"
)

func TestBuildPromptIncludesOnlyMatchingSkills(t *testing.T) {
	skills := []Skill{
		{Name: "go-skill", Glob: "**/*.go", Body: "Watch for unchecked errors."},
		{Name: "yaml-skill", Glob: "**/*.yaml", Body: "Validate indentation."},
	}
	diffs := map[string]diffengine.Result{
		"main.go": diffengine.Diff("main.go", "", "package main\n"),
	}

	prompt := BuildPrompt(skills, []string{"main.go"}, diffs, &retriever.Context{}, false, 0)

	if !strings.Contains(prompt, "Watch for unchecked errors.") {
		t.Error("BuildPrompt() should include the matching go skill")
	}
	if strings.Contains(prompt, "Validate indentation.") {
		t.Error("BuildPrompt() should not include the non-matching yaml skill")
	}
	if !strings.Contains(prompt, "package main") {
		t.Error("BuildPrompt() should render the diff")
	}
}

func TestBuildPromptTruncatesOversizedDiff(t *testing.T) {
	diffs := map[string]diffengine.Result{
		"big.go": diffengine.Diff("big.go", "", strings.Repeat("x\n", 100)),
	}
	prompt := BuildPrompt(nil, []string{"big.go"}, diffs, &retriever.Context{}, false, 20)
	if !strings.Contains(prompt, "truncated") {
		t.Error("BuildPrompt() with a small maxDiffSize should note truncation")
	}
}

func TestSystemPromptFixesOutputGrammar(t *testing.T) {
	sp := SystemPrompt()
	for _, marker := range []string{"SUMMARY:", "[File:", "[Confidence:", "VERDICT:"} {
		if !strings.Contains(sp, marker) {
			t.Errorf("SystemPrompt() missing marker %q", marker)
		}
	}
}
