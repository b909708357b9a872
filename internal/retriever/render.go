// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retriever

import (
	"fmt"
	"strings"

	"github.com/ivoyant-eng/AgnusAi/internal/graph"
)

// suggestedActionThreshold is the risk score at or above which one advisory
// line is added to the rendered context, mirroring the teacher's
// generateSuggestedActions. It is a single prompt line, never a decision
// input to the review pipeline itself.
const suggestedActionThreshold = 70

// Render serialises c as the markdown "Codebase Context" section the
// Review Orchestrator embeds in its prompt, per spec §4.4. Each symbol
// is a single line (qualifiedName, kind, signature) to keep the whole
// section within the ~500 token budget.
func (c *Context) Render(deep bool) string {
	var sb strings.Builder
	sb.WriteString("## Codebase Context\n\n")

	sb.WriteString("### Changed Symbols\n")
	renderSymbolList(&sb, c.ChangedSymbols)

	sb.WriteString("\n### Blast Radius\n")
	renderBlastRadius(&sb, c.BlastRadius)

	sb.WriteString("\n### Direct Callers (1 hop)\n")
	renderSymbolList(&sb, c.BlastRadius.DirectCallers)

	sb.WriteString("\n### Transitive Callers (2 hops)\n")
	renderSymbolList(&sb, c.BlastRadius.TransitiveCallers)

	sb.WriteString("\n### Callees\n")
	renderSymbolList(&sb, c.Callees)

	if deep {
		sb.WriteString("\n### Semantic Neighbors\n")
		if len(c.SemanticNeighbors) == 0 {
			sb.WriteString("(none)\n")
		}
		for _, m := range c.SemanticNeighbors {
			fmt.Fprintf(&sb, "- %s (%.2f) — %s\n", m.SymbolID, m.Score, firstLine(m.Text))
		}
	}

	sb.WriteString("\n### Examples your team found helpful\n")
	renderExamples(&sb, c.PriorExamples)

	sb.WriteString("\n### Examples your team found NOT helpful\n")
	renderExamples(&sb, c.RejectedExamples)

	return sb.String()
}

func renderSymbolList(sb *strings.Builder, symbols []graph.Symbol) {
	if len(symbols) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, s := range symbols {
		fmt.Fprintf(sb, "- `%s` (%s) %s\n", s.QualifiedName, s.Kind, s.Signature)
	}
}

func renderBlastRadius(sb *strings.Builder, b graph.BlastRadius) {
	fmt.Fprintf(sb, "Risk score: %d (%s) — %d direct caller(s), %d transitive caller(s), %d affected file(s)\n",
		b.RiskScore, b.RiskLevel, len(b.DirectCallers), len(b.TransitiveCallers), len(b.AffectedFiles))
	if b.RiskScore >= suggestedActionThreshold {
		sb.WriteString("Suggested action: this change has a wide blast radius — consider a broader manual review beyond this automated pass.\n")
	}
}

func renderExamples(sb *strings.Builder, examples []ExampleComment) {
	if len(examples) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, e := range examples {
		fmt.Fprintf(sb, "- [%s] (%.2f) %s\n", e.FilePath, e.Score, firstLine(e.Body))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const maxLen = 160
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}
