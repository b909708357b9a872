// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llmreview

// Filter drops comments whose confidence score falls below threshold.
// A comment with no score at all always passes through — the model
// didn't give us a basis to second-guess it, so the precision filter
// has nothing to act on.
func Filter(comments []Comment, threshold float64) []Comment {
	kept := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Confidence == nil || *c.Confidence >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}
