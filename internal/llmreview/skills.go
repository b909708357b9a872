// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Skill is a reusable review instruction scoped to the files it applies
// to, loaded from a single-table TOML document:
//
//	[skill]
//	name = "no-raw-sql"
//	glob = "**/*.go"
//	body = """
//	Flag any string-concatenated SQL query.
//	"""
type Skill struct {
	Name string `toml:"name"`
	Glob string `toml:"glob"`
	Body string `toml:"body"`
}

type skillDoc struct {
	Skill Skill `toml:"skill"`
}

// LoadSkills reads every *.toml file directly under dir into a Skill.
// A missing dir is not an error — repos that have never added skills
// simply get no extra instructions.
func LoadSkills(dir string) ([]Skill, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("llmreview: glob skills dir %s: %w", dir, err)
	}

	skills := make([]Skill, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("llmreview: read skill %s: %w", m, err)
		}
		var doc skillDoc
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("llmreview: decode skill %s: %w", m, err)
		}
		if doc.Skill.Name == "" || doc.Skill.Glob == "" {
			return nil, fmt.Errorf("llmreview: skill %s missing name or glob", m)
		}
		skills = append(skills, doc.Skill)
	}
	return skills, nil
}

// MatchGlob reports whether filePath (repo-relative, forward-slash
// separated) matches the skill's glob pattern. A leading "**/" matches
// any depth of directories, including none — stdlib path.Match alone
// can't express that, so it's handled as a special case.
func (s Skill) MatchGlob(filePath string) bool {
	const anyDepth = "**/"
	if len(s.Glob) > len(anyDepth) && s.Glob[:len(anyDepth)] == anyDepth {
		rest := s.Glob[len(anyDepth):]
		p := filePath
		for {
			if ok, err := path.Match(rest, p); err == nil && ok {
				return true
			}
			i := strings.IndexByte(p, '/')
			if i < 0 {
				return false
			}
			p = p[i+1:]
		}
	}
	ok, err := path.Match(s.Glob, filePath)
	return err == nil && ok
}

// MatchingSkills returns the subset of skills whose glob matches at
// least one of the changed files.
func MatchingSkills(skills []Skill, changedFiles []string) []Skill {
	var matched []Skill
	for _, s := range skills {
		for _, f := range changedFiles {
			if s.MatchGlob(f) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}
