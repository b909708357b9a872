// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm is the LLM Backend contract: a single chat-completion
// method every Review Orchestrator prompt is sent through, implemented
// once per hosted or self-hosted model provider.
package llm

import "context"

// Params tunes one completion request. Pointer fields distinguish
// "unset" from "explicitly zero".
type Params struct {
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	Stop        []string
}

// Backend is the contract every provider adapter implements. The Review
// Orchestrator depends on this interface alone; it never imports a
// provider SDK directly.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error)
}
