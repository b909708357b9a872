// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

var (
	reviewBaseDir     string
	reviewHeadDir     string
	reviewIncremental bool

	reviewCmd = &cobra.Command{
		Use:   "review",
		Short: "Review a working-tree change against its base",
		Long: `review diffs --base against --head, gathers the symbol-graph context
relevant to that diff, and runs a full LLM review over the result.
With no hosted forge configured, the local filesystem adapter stands in
for a pull request: --base is the merge target, --head the branch tip.`,
		RunE: runReview,
	}
)

func init() {
	reviewCmd.Flags().StringVar(&reviewBaseDir, "base", "", "Base directory to diff against (required)")
	reviewCmd.Flags().StringVar(&reviewHeadDir, "head", ".", "Head directory under review")
	reviewCmd.Flags().BoolVar(&reviewIncremental, "incremental", false,
		"Resume from the last checkpoint comment instead of reviewing from scratch")
	_ = reviewCmd.MarkFlagRequired("base")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	embedder := buildEmbedder(cfg)
	r := buildRetriever(comps, embedder)

	backend, err := buildLLMBackend(cfg)
	if err != nil {
		return fmt.Errorf("building LLM backend: %w", err)
	}

	local := vcs.NewLocal(reviewBaseDir, reviewHeadDir, vcs.PullRequest{
		HeadBranch: cfg.Repo.Branch,
		BaseBranch: "base",
		HeadSHA:    reviewHeadDir,
		BaseSHA:    reviewBaseDir,
	})

	orch, err := buildOrchestrator(comps, local, r, backend, cfg)
	if err != nil {
		return err
	}

	run := orch.Review
	if reviewIncremental {
		run = orch.ReviewIncremental
	}

	submission, err := run(ctx, cfg.Repo.ID, 0)
	if err != nil {
		return fmt.Errorf("running review: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(submission)
}
