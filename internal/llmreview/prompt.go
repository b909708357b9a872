// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivoyant-eng/AgnusAi/internal/diffengine"
	"github.com/ivoyant-eng/AgnusAi/internal/retriever"
)

// SystemPrompt is the fixed preamble every completion call sends as its
// system message: it fixes the output grammar Parse expects back.
func SystemPrompt() string {
	return `You are reviewing a pull request on behalf of its maintainers. Read the diff and the codebase context below, then respond in exactly this format:

SUMMARY: <one paragraph describing the overall change>

[File: path/to/file.go, Line: 42]
<comment text>
[Confidence: 0.8]

[File: path/to/other.go, Line: 10]
<comment text>
[Confidence: 0.4]

VERDICT: approve | request_changes | comment

Rules:
- Only comment on lines the diff added (marked with [Line N]). Never invent a file path or line number that doesn't appear in the diff.
- Every comment body must end with a [Confidence: X.X] score between 0 and 1, reflecting how sure you are the issue is real and worth a human's attention.
- Omit the comment blocks entirely if you have nothing to flag; still include SUMMARY and VERDICT.`
}

// BuildPrompt assembles the user-turn prompt: matching skill snippets,
// a size-bounded diff, and the retrieved codebase context.
func BuildPrompt(skills []Skill, changedFiles []string, diffs map[string]diffengine.Result, retrieved *retriever.Context, deep bool, maxDiffSize int) string {
	var sb strings.Builder

	if matched := MatchingSkills(skills, changedFiles); len(matched) > 0 {
		sb.WriteString("## Project-specific review skills\n\n")
		for _, s := range matched {
			fmt.Fprintf(&sb, "### %s\n%s\n\n", s.Name, s.Body)
		}
	}

	sb.WriteString("## Diff\n\n")
	sb.WriteString(renderDiff(diffs, maxDiffSize))
	sb.WriteString("\n")

	if retrieved != nil {
		sb.WriteString(retrieved.Render(deep))
	}

	return sb.String()
}

func renderDiff(diffs map[string]diffengine.Result, maxDiffSize int) string {
	paths := make([]string, 0, len(diffs))
	for p := range diffs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	for _, p := range paths {
		sb.WriteString(diffs[p].Render())
	}

	text := sb.String()
	if maxDiffSize > 0 && len(text) > maxDiffSize {
		text = text[:maxDiffSize] + "\n\n[diff truncated at the configured size limit — do not comment on files not shown above]\n"
	}
	return text
}
