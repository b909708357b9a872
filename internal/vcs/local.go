// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local is a filesystem-backed Adapter comparing two directory
// snapshots directly, with no network access. It exists for local
// `agnusreviewer review --local` runs and for exercising the review
// pipeline in tests without a forge dependency.
type Local struct {
	BaseDir string
	HeadDir string
	pr      PullRequest
}

// NewLocal builds a Local adapter diffing baseDir against headDir.
func NewLocal(baseDir, headDir string, pr PullRequest) *Local {
	return &Local{BaseDir: baseDir, HeadDir: headDir, pr: pr}
}

func (l *Local) GetPR(ctx context.Context, repoID string, number int) (PullRequest, error) {
	return l.pr, nil
}

func (l *Local) GetDiff(ctx context.Context, repoID string, number int) ([]FileChange, error) {
	baseFiles, err := listFiles(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("vcs: list base files: %w", err)
	}
	headFiles, err := listFiles(l.HeadDir)
	if err != nil {
		return nil, fmt.Errorf("vcs: list head files: %w", err)
	}

	var changes []FileChange
	for path := range headFiles {
		newContent, err := os.ReadFile(filepath.Join(l.HeadDir, path))
		if err != nil {
			return nil, fmt.Errorf("vcs: read head file %s: %w", path, err)
		}
		if oldRel, ok := baseFiles[path]; ok {
			oldContent, err := os.ReadFile(filepath.Join(l.BaseDir, oldRel))
			if err != nil {
				return nil, fmt.Errorf("vcs: read base file %s: %w", path, err)
			}
			if string(oldContent) == string(newContent) {
				continue
			}
			changes = append(changes, FileChange{
				Path: path, Status: "modified",
				OldContent: string(oldContent), NewContent: string(newContent),
			})
		} else {
			changes = append(changes, FileChange{
				Path: path, Status: "added", NewContent: string(newContent),
			})
		}
	}
	for path := range baseFiles {
		if _, ok := headFiles[path]; !ok {
			oldContent, err := os.ReadFile(filepath.Join(l.BaseDir, path))
			if err != nil {
				return nil, fmt.Errorf("vcs: read removed file %s: %w", path, err)
			}
			changes = append(changes, FileChange{
				Path: path, Status: "removed", OldContent: string(oldContent),
			})
		}
	}
	return changes, nil
}

func (l *Local) GetFiles(ctx context.Context, repoID, ref string) ([]string, error) {
	dir := l.refDir(ref)
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for p := range files {
		out = append(out, p)
	}
	return out, nil
}

func (l *Local) GetFileContent(ctx context.Context, repoID, ref, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(l.refDir(ref), path))
}

func (l *Local) AddInlineComment(ctx context.Context, repoID string, number int, c InlineComment) error {
	return nil
}

func (l *Local) SubmitReview(ctx context.Context, repoID string, number int, r ReviewSubmission) error {
	return nil
}

func (l *Local) GetLinkedTickets(ctx context.Context, repoID string, number int) ([]LinkedTicket, error) {
	return nil, nil
}

// AddComment is a no-op: a local working-tree comparison has nowhere to
// persist a posted comment between runs.
func (l *Local) AddComment(ctx context.Context, repoID string, number int, body string) error {
	return nil
}

// ListComments always returns none: a local working-tree comparison has
// nowhere to persist a checkpoint comment between runs, so incremental
// review degrades to a full review every time.
func (l *Local) ListComments(ctx context.Context, repoID string, number int) ([]string, error) {
	return nil, nil
}

func (l *Local) refDir(ref string) string {
	if ref == l.pr.BaseSHA || ref == l.pr.BaseBranch {
		return l.BaseDir
	}
	return l.HeadDir
}

func listFiles(root string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = strings.ReplaceAll(rel, string(filepath.Separator), "/")
		files[rel] = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

var _ Adapter = (*Local)(nil)
