// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import "testing"

// buildSample constructs:
//
//	main --calls--> setup --calls--> handleRequest
//	main --calls--> run --calls--> helper
//	FileReader --implements--> Reader
func buildSample(t *testing.T) *Graph {
	t.Helper()
	g := New("repo-1", "main")

	syms := []Symbol{
		{ID: "main.go#main", FilePath: "main.go", Name: "main", QualifiedName: "main", Kind: KindFunction},
		{ID: "main.go#setup", FilePath: "main.go", Name: "setup", QualifiedName: "setup", Kind: KindFunction},
		{ID: "handlers.go#handleRequest", FilePath: "handlers.go", Name: "handleRequest", QualifiedName: "handleRequest", Kind: KindFunction},
		{ID: "main.go#run", FilePath: "main.go", Name: "run", QualifiedName: "run", Kind: KindFunction},
		{ID: "utils.go#helper", FilePath: "utils.go", Name: "helper", QualifiedName: "helper", Kind: KindFunction},
		{ID: "types.go#Reader", FilePath: "types.go", Name: "Reader", QualifiedName: "Reader", Kind: KindInterface},
		{ID: "types.go#FileReader", FilePath: "types.go", Name: "FileReader", QualifiedName: "FileReader", Kind: KindClass},
	}
	for _, s := range syms {
		g.AddSymbol(s)
	}

	edges := []Edge{
		{From: "main.go#main", To: "main.go#setup", Kind: EdgeCalls},
		{From: "main.go#main", To: "main.go#run", Kind: EdgeCalls},
		{From: "main.go#setup", To: "handlers.go#handleRequest", Kind: EdgeCalls},
		{From: "main.go#run", To: "utils.go#helper", Kind: EdgeCalls},
		{From: "types.go#FileReader", To: "types.go#Reader", Kind: EdgeImplements},
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
	g.ResolveNames()
	return g
}

func TestGetCallers(t *testing.T) {
	g := buildSample(t)

	t.Run("direct caller", func(t *testing.T) {
		got := g.GetCallers("main.go#setup", 1)
		if len(got) != 1 || got[0].ID != "main.go#main" {
			t.Errorf("GetCallers(setup,1) = %v, want [main]", got)
		}
	})

	t.Run("no callers returns empty not nil-panic", func(t *testing.T) {
		got := g.GetCallers("main.go#main", 3)
		if len(got) != 0 {
			t.Errorf("GetCallers(main,3) = %v, want empty", got)
		}
	})

	t.Run("hops<=0 returns empty", func(t *testing.T) {
		got := g.GetCallers("main.go#setup", 0)
		if got != nil {
			t.Errorf("GetCallers with hops=0 = %v, want nil", got)
		}
	})

	t.Run("unknown id returns empty", func(t *testing.T) {
		got := g.GetCallers("does.not.exist", 5)
		if got != nil {
			t.Errorf("GetCallers(unknown) = %v, want nil", got)
		}
	})
}

func TestGetCallees(t *testing.T) {
	g := buildSample(t)

	got := g.GetCallees("main.go#main", 1)
	if len(got) != 2 {
		t.Fatalf("GetCallees(main,1) returned %d symbols, want 2", len(got))
	}

	t.Run("transitive hop reaches grandchildren", func(t *testing.T) {
		got := g.GetCallees("main.go#main", 2)
		names := map[string]bool{}
		for _, s := range got {
			names[s.Name] = true
		}
		for _, want := range []string{"setup", "run", "handleRequest", "helper"} {
			if !names[want] {
				t.Errorf("GetCallees(main,2) missing %s, got %v", want, got)
			}
		}
	})
}

func TestResolveNamesDropsUnmatched(t *testing.T) {
	g := New("repo-1", "main")
	g.AddSymbol(Symbol{ID: "a#fn", FilePath: "a.go", Name: "fn", Kind: KindFunction})
	g.AddEdge(Edge{From: "a#fn", To: "neverDeclared", Kind: EdgeCalls})
	g.ResolveNames()

	if got := g.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount() = %d, want 0 for an unresolvable bare-name edge", got)
	}
}

func TestRemoveFileThenReparseIsIdempotent(t *testing.T) {
	g := buildSample(t)
	before := g.SymbolCount()

	g.RemoveFile("main.go")
	if got := g.SymbolCount(); got != before-3 {
		t.Fatalf("after RemoveFile, SymbolCount() = %d, want %d", got, before-3)
	}
	if got := g.GetCallers("handlers.go#handleRequest", 5); len(got) != 0 {
		t.Errorf("dangling caller edge survived RemoveFile: %v", got)
	}

	g.AddSymbol(Symbol{ID: "main.go#main", FilePath: "main.go", Name: "main", QualifiedName: "main", Kind: KindFunction})
	g.AddSymbol(Symbol{ID: "main.go#setup", FilePath: "main.go", Name: "setup", QualifiedName: "setup", Kind: KindFunction})
	g.AddSymbol(Symbol{ID: "main.go#run", FilePath: "main.go", Name: "run", QualifiedName: "run", Kind: KindFunction})
	g.AddEdge(Edge{From: "main.go#main", To: "main.go#setup", Kind: EdgeCalls})
	g.AddEdge(Edge{From: "main.go#setup", To: "handlers.go#handleRequest", Kind: EdgeCalls})
	g.ResolveNames()

	if got := g.SymbolCount(); got != before {
		t.Errorf("after reparse, SymbolCount() = %d, want %d", got, before)
	}
	got := g.GetCallers("handlers.go#handleRequest", 1)
	if len(got) != 1 || got[0].ID != "main.go#setup" {
		t.Errorf("GetCallers(handleRequest,1) after reparse = %v, want [setup]", got)
	}
}

func TestGetBlastRadius(t *testing.T) {
	g := buildSample(t)

	t.Run("leaf function with one caller has low risk", func(t *testing.T) {
		br := g.GetBlastRadius([]string{"handlers.go#handleRequest"})
		if len(br.DirectCallers) != 1 {
			t.Errorf("DirectCallers = %v, want 1 (setup)", br.DirectCallers)
		}
		if br.RiskScore != 15 {
			t.Errorf("RiskScore = %d, want 15 (1 direct caller in 1 affected file: 10*1+5*1)", br.RiskScore)
		}
		if br.RiskLevel != RiskLow {
			t.Errorf("RiskLevel = %s, want low", br.RiskLevel)
		}
	})

	t.Run("symbol with no callers has zero blast radius", func(t *testing.T) {
		br := g.GetBlastRadius([]string{"main.go#main"})
		if len(br.DirectCallers) != 0 || len(br.TransitiveCallers) != 0 {
			t.Errorf("GetBlastRadius(main) = %+v, want no callers", br)
		}
		if br.RiskScore != 0 {
			t.Errorf("RiskScore = %d, want 0", br.RiskScore)
		}
	})

	t.Run("dedup across multiple seeds", func(t *testing.T) {
		br := g.GetBlastRadius([]string{"handlers.go#handleRequest", "utils.go#helper"})
		seen := map[string]int{}
		for _, s := range append(append([]Symbol{}, br.DirectCallers...), br.TransitiveCallers...) {
			seen[s.ID]++
		}
		for id, n := range seen {
			if n > 1 {
				t.Errorf("symbol %s counted %d times across seeds, want deduplicated", id, n)
			}
		}
	})
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	g := buildSample(t)

	data, err := g.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	restored, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}

	if restored.SymbolCount() != g.SymbolCount() {
		t.Errorf("restored SymbolCount() = %d, want %d", restored.SymbolCount(), g.SymbolCount())
	}
	if restored.EdgeCount() != g.EdgeCount() {
		t.Errorf("restored EdgeCount() = %d, want %d", restored.EdgeCount(), g.EdgeCount())
	}

	again, err := restored.Serialize()
	if err != nil {
		t.Fatalf("Serialize() (round 2) error = %v", err)
	}
	if string(again) != string(data) {
		t.Error("re-serializing a restored graph did not produce byte-identical output")
	}
}

func TestDeserializeRejectsUnknownVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"version":99,"repoId":"r","branch":"b","symbols":[],"edges":[]}`))
	if err == nil {
		t.Error("Deserialize() with unknown version = nil error, want error")
	}
}

func TestRiskLevelThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskLow}, {24, RiskLow},
		{25, RiskMedium}, {59, RiskMedium},
		{60, RiskHigh}, {84, RiskHigh},
		{85, RiskCritical}, {100, RiskCritical},
	}
	for _, c := range cases {
		if got := riskLevelFor(c.score); got != c.want {
			t.Errorf("riskLevelFor(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}
