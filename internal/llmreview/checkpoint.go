// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// checkpointSentinel is the recognisable marker prefixing a checkpoint
// payload embedded in a host PR comment: "<!-- AGNUSAI_CHECKPOINT: {...} -->".
const checkpointSentinel = "AGNUSAI_CHECKPOINT:"

// Checkpoint records the state an incremental review resumes from.
type Checkpoint struct {
	SHA           string   `json:"sha"`
	Timestamp     int64    `json:"timestamp"`
	FilesReviewed []string `json:"filesReviewed"`
	CommentCount  int      `json:"commentCount"`
	Verdict       string   `json:"verdict"`
}

// RenderCheckpoint embeds cp as an HTML comment, followed by summary, so
// it round-trips through a posted PR comment without appearing in the
// rendered markdown.
func RenderCheckpoint(cp Checkpoint, summary string) (string, error) {
	data, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("llmreview: marshal checkpoint: %w", err)
	}
	return fmt.Sprintf("<!-- %s %s -->\n%s", checkpointSentinel, string(data), summary), nil
}

// FindCheckpoint scans comment bodies, most-recent first, for the latest
// embedded checkpoint. A malformed blob is reported as an error rather
// than skipped, so the caller can fall back to a full review instead of
// silently resuming from corrupt or tampered state.
func FindCheckpoint(commentBodies []string) (Checkpoint, bool, error) {
	for _, body := range commentBodies {
		idx := strings.Index(body, checkpointSentinel)
		if idx == -1 {
			continue
		}
		rest := strings.TrimSpace(body[idx+len(checkpointSentinel):])
		end := strings.Index(rest, "-->")
		if end == -1 {
			return Checkpoint{}, false, fmt.Errorf("llmreview: checkpoint marker missing closing delimiter")
		}
		raw := strings.TrimSpace(rest[:end])

		var cp Checkpoint
		if err := json.Unmarshal([]byte(raw), &cp); err != nil {
			return Checkpoint{}, false, fmt.Errorf("llmreview: malformed checkpoint payload: %w", err)
		}
		return cp, true, nil
	}
	return Checkpoint{}, false, nil
}
