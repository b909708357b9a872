// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSkill(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write skill fixture: %v", err)
	}
}

func TestLoadSkillsParsesTOMLTable(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "no-raw-sql.toml", `[skill]
name = "no-raw-sql"
glob = "**/*.go"
body = """
Flag any string-concatenated SQL query.
"""
`)

	skills, err := LoadSkills(dir)
	if err != nil {
		t.Fatalf("LoadSkills() error = %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("len(skills) = %d, want 1", len(skills))
	}
	if skills[0].Name != "no-raw-sql" || skills[0].Glob != "**/*.go" {
		t.Errorf("skills[0] = %+v", skills[0])
	}
}

func TestLoadSkillsMissingDirIsNotAnError(t *testing.T) {
	skills, err := LoadSkills(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("LoadSkills() error = %v, want nil for an absent dir", err)
	}
	if len(skills) != 0 {
		t.Errorf("len(skills) = %d, want 0", len(skills))
	}
}

func TestSkillMatchGlobHandlesDoubleStarPrefix(t *testing.T) {
	s := Skill{Glob: "**/*.go"}
	cases := map[string]bool{
		"main.go":                 true,
		"internal/llmreview/x.go": true,
		"README.md":               false,
	}
	for path, want := range cases {
		if got := s.MatchGlob(path); got != want {
			t.Errorf("MatchGlob(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestMatchingSkillsReturnsOnlyThoseTouchingChangedFiles(t *testing.T) {
	skills := []Skill{
		{Name: "go-only", Glob: "**/*.go"},
		{Name: "yaml-only", Glob: "**/*.yaml"},
	}
	matched := MatchingSkills(skills, []string{"main.go"})
	if len(matched) != 1 || matched[0].Name != "go-only" {
		t.Errorf("MatchingSkills(...) = %+v, want only go-only", matched)
	}
}
