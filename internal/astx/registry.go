// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package astx

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// ignoredDirs are path segments that the registry refuses to walk into.
var ignoredDirs = map[string]bool{
	"node_modules":   true,
	"dist":           true,
	"build":          true,
	".git":           true,
	".next":          true,
	"__pycache__":    true,
	"coverage":       true,
	".turbo":         true,
	"target":         true,
	"__generated__":  true,
}

// generatedMarkers are filename infixes recognised as generated code,
// never parsed, matching glob patterns like "*.min.*" or "*.pb.*" for
// any language extension rather than an enumerated per-language list.
var generatedMarkers = []string{
	".min.", ".bundle.", ".pb.", ".generated.", ".gen.",
}

var lockFileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":          true,
	"pnpm-lock.yaml":     true,
	"go.sum":             true,
	"Cargo.lock":         true,
	"composer.lock":      true,
	"poetry.lock":        true,
}

// IsIgnoredDir reports whether a directory name should never be descended
// into while enumerating a repository for indexing.
func IsIgnoredDir(name string) bool {
	return ignoredDirs[name]
}

// IsGeneratedOrLock reports whether filePath names a generated file or a
// dependency lock file, per the Parser Registry's ignore patterns. These
// files are skipped from both parsing and review (§4.6.3 "Files skipped
// from review").
func IsGeneratedOrLock(filePath string) bool {
	base := path.Base(filePath)
	if lockFileNames[base] {
		return true
	}
	for _, marker := range generatedMarkers {
		if strings.Contains(base, marker) {
			return true
		}
	}
	return false
}

// IsBinary performs a crude, allocation-free binary sniff: the presence of
// a NUL byte in the first 8KiB is treated as binary content.
func IsBinary(content []byte) bool {
	n := len(content)
	if n > 8192 {
		n = 8192
	}
	for i := 0; i < n; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

// Registry dispatches a file to the Parser registered for its extension.
// A Registry is safe for concurrent use; Parse calls run concurrently
// against independent files.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]Parser
	failed  map[string]error
	logger  *slog.Logger
}

// NewRegistry returns an empty Registry. Use Register to add parsers.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byExt:  make(map[string]Parser),
		failed: make(map[string]error),
		logger: logger,
	}
}

// Register adds a parser for all of its claimed extensions, overwriting
// any previous registration for the same extension.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.Extensions() {
		r.byExt[ext] = p
	}
}

// MarkFailed records that a language's parser could not be initialised
// (grammar load failure, ABI mismatch). Files of that language are then
// skipped with a single logged warning per registration, and every other
// language continues to operate normally, per §4.1.
func (r *Registry) MarkFailed(language string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[language] = cause
	r.logger.Warn("parser unavailable, skipping language", "language", language, "error", cause)
}

// ParserFor returns the Parser registered for filePath's extension, or nil
// if none is registered or the file's path/name marks it as ignored.
func (r *Registry) ParserFor(filePath string) Parser {
	if IsGeneratedOrLock(filePath) {
		return nil
	}
	for _, seg := range strings.Split(path.Dir(filePath), "/") {
		if IsIgnoredDir(seg) {
			return nil
		}
	}
	ext := path.Ext(filePath)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExt[ext]
}

// Parse dispatches filePath to its registered parser. It returns
// (nil, nil) when no parser is registered for the file (not an error —
// the file is simply unsupported or ignored).
func (r *Registry) Parse(filePath string, content []byte) (*ParseResult, error) {
	p := r.ParserFor(filePath)
	if p == nil {
		return nil, nil
	}
	if IsBinary(content) {
		return nil, nil
	}
	result, err := p.Parse(filePath, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	return result, nil
}

// NormalizePath converts filePath to the repo-relative, forward-slash
// normalised, no-leading-slash form symbols are keyed on.
func NormalizePath(filePath string) string {
	p := strings.ReplaceAll(filePath, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}
