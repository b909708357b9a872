// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ivoyant-eng/AgnusAi/internal/logging"
)

var (
	markerRe      = regexp.MustCompile(`\[File:\s*([^,\]]+),\s*Line:\s*([^\]]+)\]`)
	verdictRe     = regexp.MustCompile(`VERDICT:\s*(approve|request_changes|comment)`)
	confidenceRe  = regexp.MustCompile(`\[Confidence:\s*([0-9]*\.?[0-9]+)\]`)
	defaultSumLen = 500
)

// Parse implements the §4.6.1 response grammar: a SUMMARY line, zero or
// more "[File: p, Line: n]" comment blocks, and a trailing VERDICT line.
// Every deviation from the grammar is tolerated and logged rather than
// treated as a fatal error — a single malformed block must never lose
// the rest of a review.
func Parse(ctx context.Context, raw string, logger *logging.Logger) ParsedResponse {
	markers := markerRe.FindAllStringSubmatchIndex(raw, -1)
	verdictMatch := verdictRe.FindStringSubmatchIndex(raw)

	result := ParsedResponse{
		Summary: extractSummary(raw, markers, verdictMatch),
	}

	for i, m := range markers {
		blockStart := m[1] // end of the marker itself
		blockEnd := len(raw)
		if i+1 < len(markers) {
			blockEnd = markers[i+1][0]
		}
		if verdictMatch != nil && verdictMatch[0] > m[0] && verdictMatch[0] < blockEnd {
			blockEnd = verdictMatch[0]
		}

		filePath := strings.TrimSpace(raw[m[2]:m[3]])
		lineText := strings.TrimSpace(raw[m[4]:m[5]])
		body := raw[blockStart:blockEnd]

		line, err := strconv.Atoi(lineText)
		if err != nil || line < 1 {
			logger.Soft(ctx, logging.TagInvalidLineNumber, "discarding comment with non-finite or out-of-range line number", "file", filePath, "raw_line", lineText)
			continue
		}

		confidence, body := extractConfidence(body)
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}

		result.Comments = append(result.Comments, Comment{
			FilePath:   filePath,
			Line:       line,
			Body:       body,
			Confidence: confidence,
			Severity:   severityFromBody(body),
		})
	}

	if verdictMatch != nil {
		result.Verdict = raw[verdictMatch[2]:verdictMatch[3]]
	} else {
		result.Verdict = VerdictComment
		logger.Soft(ctx, logging.TagLLMError, "response had no VERDICT: line, defaulting to comment")
	}

	if len(markers) == 0 && !strings.Contains(raw, "VERDICT:") {
		logger.Soft(ctx, logging.TagLLMError, "response had no comment markers and no VERDICT: line, possible truncation")
	}

	return result
}

func extractSummary(raw string, markers [][]int, verdictMatch []int) string {
	const prefix = "SUMMARY:"
	idx := strings.Index(raw, prefix)
	if idx == -1 {
		if len(raw) > defaultSumLen {
			return strings.TrimSpace(raw[:defaultSumLen])
		}
		return strings.TrimSpace(raw)
	}

	end := len(raw)
	if len(markers) > 0 {
		end = markers[0][0]
	}
	if verdictMatch != nil && verdictMatch[0] < end {
		end = verdictMatch[0]
	}
	start := idx + len(prefix)
	if start > end {
		end = len(raw)
	}
	return strings.TrimSpace(raw[start:end])
}

func extractConfidence(body string) (*float64, string) {
	m := confidenceRe.FindStringSubmatchIndex(body)
	if m == nil {
		return nil, body
	}
	value, err := strconv.ParseFloat(body[m[2]:m[3]], 64)
	stripped := body[:m[0]] + body[m[1]:]
	if err != nil {
		return nil, stripped
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return &value, stripped
}

func severityFromBody(body string) string {
	lower := strings.ToLower(body)
	switch {
	case strings.Contains(lower, "critical"):
		return SeverityError
	case strings.Contains(lower, "major"):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
