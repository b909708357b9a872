// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ivoyant-eng/AgnusAi/internal/diffengine"
	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

// ValidateAndDedupe drops comments that reference a file outside the
// diff or a line the diff didn't add (a model hallucinating a path or
// line number), assigns each surviving comment a content-addressed id,
// and drops duplicates — both within this response and against a
// comment a human already dismissed at the same (file, line, body).
func ValidateAndDedupe(ctx context.Context, comments []Comment, diffs map[string]diffengine.Result, store storage.Adapter, logger *logging.Logger) ([]Comment, error) {
	addedLines := make(map[string]map[int]bool, len(diffs))
	normalized := make(map[string]string, len(diffs))
	for diffPath, res := range diffs {
		norm := strings.TrimPrefix(diffPath, "/")
		normalized[norm] = diffPath

		lines := make(map[int]bool)
		for _, h := range res.Hunks {
			for _, op := range h.Ops {
				if op.Kind == diffengine.OpInsert {
					lines[op.NewLine+1] = true
				}
			}
		}
		addedLines[norm] = lines
	}

	seenThisResponse := make(map[string]bool)
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		normPath := strings.TrimPrefix(c.FilePath, "/")
		originalPath, ok := normalized[normPath]
		if !ok {
			logger.Soft(ctx, logging.TagHallucinatedPath, "dropping comment on a file not present in the diff", "file", c.FilePath)
			continue
		}
		if !addedLines[normPath][c.Line] {
			logger.Soft(ctx, logging.TagInvalidLineNumber, "dropping comment on a line the diff did not add", "file", c.FilePath, "line", c.Line)
			continue
		}

		dupKey := fmt.Sprintf("%s:%d", normPath, c.Line)
		if seenThisResponse[dupKey] {
			continue
		}
		seenThisResponse[dupKey] = true

		id := contentHash(normPath, c.Line, c.Body)
		dismissed, err := wasDismissed(ctx, store, id)
		if err != nil {
			return nil, fmt.Errorf("llmreview: check dismissal for comment %s: %w", id, err)
		}
		if dismissed {
			continue
		}

		c.FilePath = originalPath
		out = append(out, c)
	}
	return out, nil
}

// contentHash is the dedup key a comment is stored and looked up under:
// stable across re-reviews of the same (file, line, body) triple, so a
// human's dismissal of a comment survives the model re-raising it later.
func contentHash(filePath string, line int, body string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", filePath, line, body)))
	return hex.EncodeToString(sum[:])[:16]
}

var dismissalPhrases = []string{"not an issue", "wontfix", "won't fix", "intentional", "dismissed"}

func wasDismissed(ctx context.Context, store storage.Adapter, commentID string) (bool, error) {
	records, err := store.FeedbackForComment(ctx, commentID)
	if err != nil {
		return false, err
	}
	for _, f := range records {
		if f.Rating == "dismissed" {
			return true, nil
		}
		lower := strings.ToLower(f.Note)
		for _, phrase := range dismissalPhrases {
			if strings.Contains(lower, phrase) {
				return true, nil
			}
		}
	}
	return false, nil
}
