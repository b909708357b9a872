// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command agnusreviewer is the CLI entry point for the graph-aware
// review core: it indexes a repository, runs a pull request review, or
// serves the feedback HTTP endpoint, depending on the subcommand.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("agnusreviewer: %v", err)
	}
}
