// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides the structured logger shared by every component
// of the review core.
//
// It wraps log/slog rather than replacing it: a Logger is a thin holder for
// an *slog.Logger plus an optional dated file destination, so that the
// core can run both as a CLI (stderr only) and as a long-lived indexing
// daemon (stderr + file).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Tag is a recognisable prefix attached to soft (non-fatal) error kinds
// per the error handling design: parse-error, embedding-failure,
// storage-error, llm-error, vcs-error, diff-truncation, hallucinated-path,
// invalid-line-number, malformed-checkpoint.
type Tag string

const (
	TagParseError          Tag = "parse-error"
	TagEmbeddingFailure    Tag = "embedding-failure"
	TagStorageError        Tag = "storage-error"
	TagLLMError            Tag = "llm-error"
	TagVCSError            Tag = "vcs-error"
	TagDiffTruncation      Tag = "diff-truncation"
	TagHallucinatedPath    Tag = "hallucinated-path"
	TagInvalidLineNumber   Tag = "invalid-line-number"
	TagMalformedCheckpoint Tag = "malformed-checkpoint"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum level logged. Defaults to slog.LevelInfo.
	Level slog.Level

	// LogDir, if non-empty, enables an additional JSON destination at
	// <LogDir>/<Service>_<date>.log alongside stderr.
	LogDir string

	// Service names the emitting component, used in the log filename and
	// attached to every record as "service".
	Service string
}

// Logger is the structured logger used across the review core.
type Logger struct {
	*slog.Logger
	file io.Closer
}

// Default returns a Logger writing text-formatted records to stderr at
// info level. Suitable for CLI usage.
func Default() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{Logger: slog.New(handler)}
}

// New builds a Logger from Config. When cfg.LogDir is set, a JSON file
// destination is created (directories are created as needed) and combined
// with stderr via a fan-out handler.
func New(cfg Config) (*Logger, error) {
	level := cfg.Level
	writers := []io.Writer{os.Stderr}
	var closer io.Closer

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, err
		}
		name := cfg.Service
		if name == "" {
			name = "agnusreviewer"
		}
		path := filepath.Join(cfg.LogDir, name+"_"+time.Now().UTC().Format("2006-01-02")+".log")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
		closer = f
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return &Logger{Logger: logger, file: closer}, nil
}

// Close releases the file destination, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Soft logs a non-fatal error with its recognisable tag. The pipeline
// continues after this call; Soft never returns an error itself.
func (l *Logger) Soft(ctx context.Context, tag Tag, msg string, args ...any) {
	l.Logger.WarnContext(ctx, string(tag)+": "+msg, args...)
}
