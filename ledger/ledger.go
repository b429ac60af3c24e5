// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the hub node's custody ledger. It records the
// current holder of every asset represented on this ledger and backs
// the bridge's mint and burn surface.
package ledger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/ids"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/store"
)

// Ledger tracks asset holders in the bridge database.
type Ledger struct {
	db *store.DB
}

func New(db *store.DB) *Ledger {
	return &Ledger{db: db}
}

func key(assetID ids.ID) []byte {
	return fmt.Appendf(nil, "ledger/%x", assetID[:])
}

// Mint records the arriving representation under its recipient. The
// write lands in the caller's transaction and only becomes durable
// when that transaction commits.
func (l *Ledger) Mint(_ context.Context, txn *badger.Txn, t *nftbridge.Transfer) error {
	_, ok, err := store.GetValue(txn, key(t.AssetID))
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: asset %x already exists", nftbridge.ErrOperationNotAllowed, t.AssetID[:])
	}
	return txn.Set(key(t.AssetID), t.Recipient)
}

// Burn retires the departing representation within the caller's
// transaction.
func (l *Ledger) Burn(_ context.Context, txn *badger.Txn, assetID ids.ID) error {
	_, ok, err := store.GetValue(txn, key(assetID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: asset %x does not exist", nftbridge.ErrOperationNotAllowed, assetID[:])
	}
	return txn.Delete(key(assetID))
}

// Owner returns the current holder of an asset.
func (l *Ledger) Owner(_ context.Context, txn *badger.Txn, assetID ids.ID) ([]byte, error) {
	val, ok, err := store.GetValue(txn, key(assetID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: asset %x does not exist", nftbridge.ErrOperationNotAllowed, assetID[:])
	}
	return val, nil
}

// Assign sets the holder directly. It backs local mints that have not
// gone through the bridge.
func (l *Ledger) Assign(assetID ids.ID, owner []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(assetID), owner)
	})
}
