// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ivoyant-eng/AgnusAi/internal/config"
)

var (
	configPath string
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "agnusreviewer",
		Short: "Graph-aware code review core",
		Long: `agnusreviewer indexes a codebase into a symbol graph, retrieves the
context relevant to a pull request's diff, and drives an LLM through a
structured review, all grounded on a validated, deduplicated set of
inline comments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".agnusreviewer/config.yaml",
		"Path to the YAML configuration file")
}

func fatalf(format string, args ...any) {
	log.Fatalf("agnusreviewer: "+format, args...)
}
