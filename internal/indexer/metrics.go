// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agnusreviewer",
		Subsystem: "indexer",
		Name:      "files_parsed_total",
		Help:      "Total files dispatched to the Parser Registry, by outcome",
	}, []string{"outcome"}) // "ok", "skipped", "error"

	symbolsIndexedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agnusreviewer",
		Subsystem: "indexer",
		Name:      "symbols_indexed_total",
		Help:      "Total symbols inserted into the symbol graph",
	})
)
