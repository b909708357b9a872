// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphcache

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/ivoyant-eng/AgnusAi/internal/logging"
)

// hotTier is the warm tier of the cache: a BadgerDB instance holding the
// most recently touched graph snapshots, keyed by "<repoId>\x00<branch>".
// It sits between the in-process RAM tier and the Storage Adapter's
// sqlite-backed cold tier.
type hotTier struct {
	db *badger.DB
}

type badgerLogAdapter struct{ logger *logging.Logger }

func (l *badgerLogAdapter) Errorf(format string, args ...any)   { l.logger.Error(fmt.Sprintf(format, args...)) }
func (l *badgerLogAdapter) Warningf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }
func (l *badgerLogAdapter) Infof(format string, args ...any)    {}
func (l *badgerLogAdapter) Debugf(format string, args ...any)   {}

// openHotTier opens (creating if needed) a BadgerDB instance at dir. An
// empty dir opens an in-memory instance, used by tests and by
// single-shot CLI invocations where a warm tier would never be reused.
func openHotTier(dir string, logger *logging.Logger) (*hotTier, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("graphcache: create hot-tier dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithSyncWrites(false).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogAdapter{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("graphcache: open badger: %w", err)
	}
	return &hotTier{db: db}, nil
}

func hotKey(repoID, branch string) []byte {
	return []byte(repoID + "\x00" + branch)
}

func (t *hotTier) get(repoID, branch string) ([]byte, bool, error) {
	var data []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hotKey(repoID, branch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("graphcache: hot-tier get: %w", err)
	}
	return data, data != nil, nil
}

func (t *hotTier) put(repoID, branch string, data []byte) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hotKey(repoID, branch), data)
	})
	if err != nil {
		return fmt.Errorf("graphcache: hot-tier put: %w", err)
	}
	return nil
}

func (t *hotTier) delete(repoID, branch string) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(hotKey(repoID, branch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("graphcache: hot-tier delete: %w", err)
	}
	return nil
}

func (t *hotTier) close() error { return t.db.Close() }
