// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoyant-eng/AgnusAi/internal/astx"
	"github.com/ivoyant-eng/AgnusAi/internal/indexer"
	"github.com/ivoyant-eng/AgnusAi/internal/vcs"
)

var (
	indexPath string

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Build or rebuild the symbol graph for a repository",
		Long: `index walks a repository's working tree, parses every supported source
file, and stores the resulting symbol graph (and, if embedding is
enabled, its vector embeddings) for later reviews to retrieve from.`,
		RunE: runIndex,
	}
)

func init() {
	indexCmd.Flags().StringVar(&indexPath, "path", ".", "Repository path to index")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	registry := astx.NewDefaultRegistry(comps.Logger.Logger)
	ix := indexer.New(registry, comps.Cache, buildEmbedder(cfg), comps.Vectors, comps.Storage, comps.Logger)

	local := vcs.NewLocal(indexPath, indexPath, vcs.PullRequest{HeadBranch: cfg.Repo.Branch})

	progress := make(chan indexer.Progress, 32)
	drained := make(chan struct{})
	go func() {
		for p := range progress {
			reportProgress(p)
		}
		close(drained)
	}()

	err = ix.Full(ctx, cfg.Repo.ID, cfg.Repo.Branch, local, progress)
	close(progress)
	<-drained

	return err
}

func reportProgress(p indexer.Progress) {
	switch p.Phase {
	case indexer.PhaseParsing:
		fmt.Printf("parsing: %d/%d files, %d symbols found\n", p.FilesDone, p.FilesTotal, p.SymbolsFound)
	case indexer.PhaseEmbedding:
		fmt.Printf("embedding: %d/%d symbols\n", p.EmbeddingDone, p.EmbeddingTotal)
	case indexer.PhaseDone:
		fmt.Println("index complete")
	case indexer.PhaseError:
		fmt.Printf("index error: %v\n", p.Err)
	}
}
