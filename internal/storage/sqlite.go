// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, no cgo

	"github.com/ivoyant-eng/AgnusAi/internal/logging"
)

const currentSchemaVersion = 1

// SQLite is the Storage Adapter backed by a single on-disk sqlite
// database, opened with WAL journaling so the Indexer can write while a
// review is reading the same repo's snapshot.
type SQLite struct {
	conn   *sql.DB
	logger *logging.Logger
}

// Open opens or creates the database at <dataDir>/agnusreviewer.db.
func Open(dataDir string, logger *logging.Logger) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "agnusreviewer.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-32000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("storage: set pragma %q: %w", p, err)
		}
	}

	s := &SQLite{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin migration tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS graph_snapshots (
			repo_id TEXT NOT NULL,
			branch TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (repo_id, branch)
		)`,
		`CREATE TABLE IF NOT EXISTS symbol_embeddings (
			symbol_id TEXT PRIMARY KEY,
			repo_id TEXT NOT NULL,
			dim INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbol_embeddings_repo ON symbol_embeddings(repo_id)`,
		`CREATE TABLE IF NOT EXISTS symbols (
			id TEXT NOT NULL,
			repo_id TEXT NOT NULL,
			branch TEXT NOT NULL,
			file_path TEXT NOT NULL,
			name TEXT NOT NULL,
			qualified_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			signature TEXT NOT NULL,
			body_start INTEGER NOT NULL,
			body_end INTEGER NOT NULL,
			doc_comment TEXT,
			PRIMARY KEY (repo_id, branch, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(repo_id, branch, file_path)`,
		`CREATE TABLE IF NOT EXISTS edges (
			repo_id TEXT NOT NULL,
			branch TEXT NOT NULL,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_repo_branch ON edges(repo_id, branch)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			repo_id TEXT NOT NULL,
			pr_number INTEGER NOT NULL,
			commit_sha TEXT NOT NULL,
			summary TEXT NOT NULL,
			verdict TEXT NOT NULL,
			checkpoint_id TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_repo_pr ON reviews(repo_id, pr_number)`,
		`CREATE TABLE IF NOT EXISTS review_comments (
			id TEXT PRIMARY KEY,
			review_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			line INTEGER NOT NULL,
			body TEXT NOT NULL,
			confidence REAL NOT NULL,
			severity TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_comments_review ON review_comments(review_id)`,
		`CREATE INDEX IF NOT EXISTS idx_review_comments_hash ON review_comments(content_hash)`,
		`CREATE TABLE IF NOT EXISTS review_feedback (
			comment_id TEXT NOT NULL,
			rating TEXT NOT NULL CHECK(rating IN ('helpful','unhelpful','dismissed')),
			note TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (comment_id) REFERENCES review_comments(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_feedback_comment ON review_feedback(comment_id)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("storage: migration statement failed: %w", err)
		}
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("storage: read schema version: %w", err)
	}
	if count == 0 {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("storage: set schema version: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Close() error { return s.conn.Close() }

func (s *SQLite) SaveSnapshot(ctx context.Context, rec SnapshotRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO graph_snapshots (repo_id, branch, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_id, branch) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at
	`, rec.RepoID, rec.Branch, rec.Data, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storage: save snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) LoadSnapshot(ctx context.Context, repoID, branch string) (SnapshotRecord, bool, error) {
	var rec SnapshotRecord
	rec.RepoID, rec.Branch = repoID, branch
	err := s.conn.QueryRowContext(ctx, `
		SELECT data, updated_at FROM graph_snapshots WHERE repo_id = ? AND branch = ?
	`, repoID, branch).Scan(&rec.Data, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return SnapshotRecord{}, false, nil
	}
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("storage: load snapshot: %w", err)
	}
	return rec, true, nil
}

func (s *SQLite) DeleteSnapshot(ctx context.Context, repoID, branch string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM graph_snapshots WHERE repo_id = ? AND branch = ?`, repoID, branch)
	if err != nil {
		return fmt.Errorf("storage: delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) SaveSymbols(ctx context.Context, symbols []SymbolRecord) error {
	if len(symbols) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin save symbols tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (id, repo_id, branch, file_path, name, qualified_name, kind, signature, body_start, body_end, doc_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, branch, id) DO UPDATE SET
			file_path=excluded.file_path, name=excluded.name, qualified_name=excluded.qualified_name,
			kind=excluded.kind, signature=excluded.signature, body_start=excluded.body_start,
			body_end=excluded.body_end, doc_comment=excluded.doc_comment
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert symbol: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, sym.ID, sym.RepoID, sym.Branch, sym.FilePath, sym.Name, sym.QualifiedName, sym.Kind, sym.Signature, sym.BodyStart, sym.BodyEnd, sym.DocComment); err != nil {
			return fmt.Errorf("storage: insert symbol %s: %w", sym.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) DeleteSymbolsForFile(ctx context.Context, repoID, branch, filePath string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin delete symbols tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM edges WHERE repo_id = ? AND branch = ? AND (
			from_id IN (SELECT id FROM symbols WHERE repo_id = ? AND branch = ? AND file_path = ?)
			OR to_id IN (SELECT id FROM symbols WHERE repo_id = ? AND branch = ? AND file_path = ?)
		)
	`, repoID, branch, repoID, branch, filePath, repoID, branch, filePath); err != nil {
		return fmt.Errorf("storage: delete edges for file %s: %w", filePath, err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM symbols WHERE repo_id = ? AND branch = ? AND file_path = ?
	`, repoID, branch, filePath); err != nil {
		return fmt.Errorf("storage: delete symbols for file %s: %w", filePath, err)
	}
	return tx.Commit()
}

func (s *SQLite) DeleteSymbolsForRepo(ctx context.Context, repoID, branch string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin delete repo symbols tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE repo_id = ? AND branch = ?`, repoID, branch); err != nil {
		return fmt.Errorf("storage: delete edges for repo %s: %w", repoID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE repo_id = ? AND branch = ?`, repoID, branch); err != nil {
		return fmt.Errorf("storage: delete symbols for repo %s: %w", repoID, err)
	}
	return tx.Commit()
}

// SaveEdges replaces every edge row for (repoID, branch) with edges.
// Edges are not file-scoped the way symbols are (an edge's two
// endpoints may live in different files), so unlike SaveSymbols this
// is a full replace rather than an upsert: the caller always passes
// graph.AllEdges() after a full resolve pass.
func (s *SQLite) SaveEdges(ctx context.Context, repoID, branch string, edges []EdgeRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin save edges tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE repo_id = ? AND branch = ?`, repoID, branch); err != nil {
		return fmt.Errorf("storage: clear edges: %w", err)
	}

	if len(edges) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO edges (repo_id, branch, from_id, to_id, kind) VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("storage: prepare insert edge: %w", err)
		}
		defer stmt.Close()

		for _, e := range edges {
			if _, err := stmt.ExecContext(ctx, repoID, branch, e.From, e.To, e.Kind); err != nil {
				return fmt.Errorf("storage: insert edge %s->%s: %w", e.From, e.To, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLite) SaveReview(ctx context.Context, rec ReviewRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO reviews (id, repo_id, pr_number, commit_sha, summary, verdict, checkpoint_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RepoID, rec.PRNumber, rec.CommitSHA, rec.Summary, rec.Verdict, rec.CheckpointID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: save review: %w", err)
	}
	return nil
}

func (s *SQLite) SaveComments(ctx context.Context, comments []CommentRecord) error {
	if len(comments) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin save comments tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO review_comments (id, review_id, file_path, line, body, confidence, severity, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert comment: %w", err)
	}
	defer stmt.Close()

	for _, c := range comments {
		if _, err := stmt.ExecContext(ctx, c.ID, c.ReviewID, c.FilePath, c.Line, c.Body, c.Confidence, c.Severity, c.ContentHash, c.CreatedAt); err != nil {
			return fmt.Errorf("storage: insert comment %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) RecentComments(ctx context.Context, repoID string, limit int) ([]CommentRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT c.id, c.review_id, c.file_path, c.line, c.body, c.confidence, c.severity, c.content_hash, c.created_at
		FROM review_comments c
		JOIN reviews r ON r.id = c.review_id
		WHERE r.repo_id = ?
		ORDER BY c.created_at DESC
		LIMIT ?
	`, repoID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: query recent comments: %w", err)
	}
	defer rows.Close()

	var out []CommentRecord
	for rows.Next() {
		var c CommentRecord
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.FilePath, &c.Line, &c.Body, &c.Confidence, &c.Severity, &c.ContentHash, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveFeedback(ctx context.Context, rec FeedbackRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO review_feedback (comment_id, rating, note, created_at) VALUES (?, ?, ?, ?)
	`, rec.CommentID, rec.Rating, rec.Note, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: save feedback: %w", err)
	}
	return nil
}

func (s *SQLite) FeedbackForComment(ctx context.Context, commentID string) ([]FeedbackRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT comment_id, rating, note, created_at FROM review_feedback WHERE comment_id = ? ORDER BY created_at
	`, commentID)
	if err != nil {
		return nil, fmt.Errorf("storage: query feedback: %w", err)
	}
	defer rows.Close()

	var out []FeedbackRecord
	for rows.Next() {
		var f FeedbackRecord
		var note sql.NullString
		if err := rows.Scan(&f.CommentID, &f.Rating, &note, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan feedback: %w", err)
		}
		f.Note = note.String
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLite) UpsertEmbeddingRecord(ctx context.Context, rec EmbeddingRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO symbol_embeddings (symbol_id, repo_id, dim, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol_id) DO UPDATE SET dim=excluded.dim, updated_at=excluded.updated_at
	`, rec.SymbolID, rec.RepoID, rec.Dim, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storage: upsert embedding record: %w", err)
	}
	return nil
}

func (s *SQLite) EmbeddingDim(ctx context.Context, repoID string) (int, bool, error) {
	var dim int
	err := s.conn.QueryRowContext(ctx, `
		SELECT dim FROM symbol_embeddings WHERE repo_id = ? LIMIT 1
	`, repoID).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: read embedding dim: %w", err)
	}
	return dim, true, nil
}

func (s *SQLite) DeleteEmbeddingDim(ctx context.Context, repoID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM symbol_embeddings WHERE repo_id = ?`, repoID)
	if err != nil {
		return fmt.Errorf("storage: delete embedding dim for repo %s: %w", repoID, err)
	}
	return nil
}

var _ Adapter = (*SQLite)(nil)
