// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry tracks the origin and residency of every asset the
// bridge has seen. One record exists per asset id; the home fields are
// written once and never change, while residency flips only through
// the departure and arrival transitions.
package registry

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/cache"
	"github.com/luxfi/nftbridge/store"
)

var (
	// ErrNotFound is returned when no origin record exists for an
	// asset.
	ErrNotFound = errors.New("origin record not found")

	registeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_origin_records_total",
		Help: "Total number of origin records created",
	})
)

const defaultCacheSize = 1024

// Record is the persistent origin entry of one asset.
type Record struct {
	AssetID       ids.ID
	HomeChainID   uint64
	HomeReference []byte
	URI           string
	Resident      bool
	CreatedAt     uint64
	UpdatedAt     uint64
}

// sameHome reports whether the record's immutable fields match the
// given registration.
func (r *Record) sameHome(homeChainID uint64, homeReference []byte, uri string) bool {
	return r.HomeChainID == homeChainID &&
		bytes.Equal(r.HomeReference, homeReference) &&
		r.URI == uri
}

// Key returns the deterministic store key of an asset's origin record.
func Key(assetID ids.ID) []byte {
	return fmt.Appendf(nil, "origin/%x", assetID[:])
}

// Registry mediates all reads and writes of origin records. Mutating
// methods run inside a caller-supplied transaction so a transfer
// handler can commit the origin transition together with its other
// effects.
type Registry struct {
	db    *store.DB
	cache *cache.LRUCache[ids.ID, *Record]
}

// New builds a registry over db. A non-positive cacheSize selects the
// default lookup cache size.
func New(db *store.DB, cacheSize int) *Registry {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Registry{
		db:    db,
		cache: cache.NewLRUCache[ids.ID, *Record](cacheSize),
	}
}

// Get reads the record for assetID within txn.
func (r *Registry) Get(txn *badger.Txn, assetID ids.ID) (*Record, error) {
	val, ok, err := store.GetValue(txn, Key(assetID))
	if err != nil {
		return nil, fmt.Errorf("failed to read origin record: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: asset %x", ErrNotFound, assetID[:])
	}
	rec := new(Record)
	if err := rlp.DecodeBytes(val, rec); err != nil {
		return nil, fmt.Errorf("failed to decode origin record: %w", err)
	}
	return rec, nil
}

// Lookup reads the record outside any transaction, through the LRU.
func (r *Registry) Lookup(assetID ids.ID) (*Record, error) {
	return r.cache.Get(assetID, func(id ids.ID) (*Record, error) {
		var rec *Record
		err := r.db.View(func(txn *badger.Txn) error {
			var err error
			rec, err = r.Get(txn, id)
			return err
		})
		return rec, err
	}, false)
}

// Invalidate drops an asset's cached record. Callers that mutate a
// record must call this after their transaction commits: a Lookup
// racing the commit window can re-cache the pre-transaction record,
// and only a post-commit invalidation evicts it.
func (r *Registry) Invalidate(assetID ids.ID) {
	r.cache.Invalidate(assetID)
}

func (r *Registry) put(txn *badger.Txn, rec *Record) error {
	r.cache.Invalidate(rec.AssetID)
	val, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return fmt.Errorf("failed to encode origin record: %w", err)
	}
	return txn.Set(Key(rec.AssetID), val)
}

// RegisterNew creates the origin record for a locally minted asset.
// Registering an identical record again is a no-op; registering with
// different home fields is a conflict.
func (r *Registry) RegisterNew(txn *badger.Txn, assetID ids.ID, homeChainID uint64, homeReference []byte, uri string, now uint64) error {
	existing, err := r.Get(txn, assetID)
	switch {
	case err == nil:
		if !existing.sameHome(homeChainID, homeReference, uri) {
			return fmt.Errorf("%w: asset %x already registered with different home fields",
				nftbridge.ErrOriginConflict, assetID[:])
		}
		return nil
	case !errors.Is(err, ErrNotFound):
		return err
	}

	registeredTotal.Inc()
	return r.put(txn, &Record{
		AssetID:       assetID,
		HomeChainID:   homeChainID,
		HomeReference: homeReference,
		URI:           uri,
		Resident:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// MarkDeparted records that the live representation left this ledger.
func (r *Registry) MarkDeparted(txn *badger.Txn, assetID ids.ID, now uint64) error {
	rec, err := r.Get(txn, assetID)
	if err != nil {
		return err
	}
	if !rec.Resident {
		return fmt.Errorf("%w: asset %x is not resident", nftbridge.ErrOperationNotAllowed, assetID[:])
	}
	rec.Resident = false
	rec.UpdatedAt = now
	return r.put(txn, rec)
}

// MarkArrived records that the live representation arrived here,
// creating the record on first contact with a foreign-home asset. The
// home fields of an existing record are never touched.
func (r *Registry) MarkArrived(txn *badger.Txn, assetID ids.ID, homeChainID uint64, homeReference []byte, uri string, now uint64) error {
	rec, err := r.Get(txn, assetID)
	switch {
	case errors.Is(err, ErrNotFound):
		registeredTotal.Inc()
		rec = &Record{
			AssetID:       assetID,
			HomeChainID:   homeChainID,
			HomeReference: homeReference,
			URI:           uri,
			CreatedAt:     now,
		}
	case err != nil:
		return err
	}
	rec.Resident = true
	rec.UpdatedAt = now
	return r.put(txn, rec)
}

// UpdateURI is the dedicated metadata-update path. It may change the
// URI of an existing record but never its identity fields; callers
// gate it on the administrative authority.
func (r *Registry) UpdateURI(txn *badger.Txn, assetID ids.ID, uri string, now uint64) error {
	if len(uri) > nftbridge.MaxURILen {
		return fmt.Errorf("%w: uri length %d exceeds %d", nftbridge.ErrDecode, len(uri), nftbridge.MaxURILen)
	}
	rec, err := r.Get(txn, assetID)
	if err != nil {
		return err
	}
	rec.URI = uri
	rec.UpdatedAt = now
	return r.put(txn, rec)
}
