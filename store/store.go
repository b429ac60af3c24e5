// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package store bootstraps the badger key/value store shared by the
// persistent protocol components. Records are addressed by
// deterministic keys computed from their identifiers, so no secondary
// index exists anywhere.
package store

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// DB wraps the underlying badger instance. Conflicting updates to the
// same key are serialized by badger's transaction machinery, which is
// what the replay guard's test-and-set relies on.
type DB struct {
	db *badger.DB
}

// Open opens (creating if needed) the store rooted at dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenMemory opens an ephemeral in-memory store, used by tests and the
// CLI's dry-run paths.
func OpenMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Update runs fn in a read-write transaction. All writes commit
// together or not at all.
func (d *DB) Update(fn func(txn *badger.Txn) error) error {
	return d.db.Update(fn)
}

// View runs fn in a read-only transaction.
func (d *DB) View(fn func(txn *badger.Txn) error) error {
	return d.db.View(fn)
}

// GetValue reads key within txn, returning ok=false when the key does
// not exist.
func GetValue(txn *badger.Txn, key []byte) ([]byte, bool, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}
