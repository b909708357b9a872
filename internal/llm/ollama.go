// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaBackend drives a local/self-hosted model through langchaingo's
// Ollama client, so a deployment never needs an outbound API key.
type OllamaBackend struct {
	model *ollama.LLM
}

// NewOllamaBackend connects to an Ollama server at baseURL running model.
func NewOllamaBackend(baseURL, model string) (*OllamaBackend, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	m, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: init ollama backend: %w", err)
	}
	return &OllamaBackend{model: m}, nil
}

func (o *OllamaBackend) Complete(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	var callOpts []llms.CallOption
	if params.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.TopP != nil {
		callOpts = append(callOpts, llms.WithTopP(float64(*params.TopP)))
	}
	if params.MaxTokens != nil {
		callOpts = append(callOpts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(params.Stop))
	}

	resp, err := o.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("llm: ollama completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: ollama returned no choices")
	}
	return resp.Choices[0].Content, nil
}
