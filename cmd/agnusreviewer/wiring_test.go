// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
)

func TestBuildLLMBackendRejectsUnknownProvider(t *testing.T) {
	c := config.Default()
	c.LLM.Provider = "not-a-real-provider"

	if _, err := buildLLMBackend(c); err == nil {
		t.Error("buildLLMBackend() error = nil, want an error for an unrecognised provider")
	}
}

func TestBuildLLMBackendDefaultsToOpenAI(t *testing.T) {
	c := config.Default()

	backend, err := buildLLMBackend(c)
	if err != nil {
		t.Fatalf("buildLLMBackend() error = %v", err)
	}
	if backend == nil {
		t.Error("buildLLMBackend() returned a nil Backend with no error")
	}
}

func TestBuildEmbedderNilWhenDisabled(t *testing.T) {
	c := config.Default()
	c.Embedding.Enabled = false

	if e := buildEmbedder(c); e != nil {
		t.Error("buildEmbedder() != nil, want nil when embedding is disabled")
	}
}
