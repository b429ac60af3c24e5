// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/store"
)

func newTestRegistry(t *testing.T) (*Registry, *store.DB) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, 0), db
}

func TestRegisterNewIdempotent(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("mint-7"))
	err := db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, nftbridge.HubChainID, []byte("mint-7"), "ipfs://a", 100)
	})
	require.NoError(err)

	// Same registration again is a no-op.
	err = db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, nftbridge.HubChainID, []byte("mint-7"), "ipfs://a", 200)
	})
	require.NoError(err)

	rec, err := reg.Lookup(assetID)
	require.NoError(err)
	require.Equal(uint64(100), rec.CreatedAt)
	require.True(rec.Resident)
}

func TestRegisterNewConflict(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(1, []byte("token"))
	err := db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, 1, []byte("token"), "ipfs://a", 100)
	})
	require.NoError(err)

	for _, tc := range []struct {
		name        string
		homeChainID uint64
		homeRef     []byte
		uri         string
	}{
		{"different home chain", 2, []byte("token"), "ipfs://a"},
		{"different home reference", 1, []byte("other"), "ipfs://a"},
		{"different uri", 1, []byte("token"), "ipfs://b"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := db.Update(func(txn *badger.Txn) error {
				return reg.RegisterNew(txn, assetID, tc.homeChainID, tc.homeRef, tc.uri, 300)
			})
			require.ErrorIs(err, nftbridge.ErrOriginConflict)
		})
	}
}

func TestResidencyTransitions(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("hub-asset"))

	// Departure of an unknown asset fails.
	err := db.Update(func(txn *badger.Txn) error {
		return reg.MarkDeparted(txn, assetID, 10)
	})
	require.ErrorIs(err, ErrNotFound)

	err = db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, nftbridge.HubChainID, []byte("hub-asset"), "ipfs://a", 10)
	})
	require.NoError(err)

	err = db.Update(func(txn *badger.Txn) error {
		return reg.MarkDeparted(txn, assetID, 20)
	})
	require.NoError(err)

	rec, err := reg.Lookup(assetID)
	require.NoError(err)
	require.False(rec.Resident)
	require.Equal(uint64(20), rec.UpdatedAt)

	// Departing twice is not allowed.
	err = db.Update(func(txn *badger.Txn) error {
		return reg.MarkDeparted(txn, assetID, 30)
	})
	require.ErrorIs(err, nftbridge.ErrOperationNotAllowed)

	err = db.Update(func(txn *badger.Txn) error {
		return reg.MarkArrived(txn, assetID, nftbridge.HubChainID, []byte("hub-asset"), "ipfs://a", 40)
	})
	require.NoError(err)

	rec, err = reg.Lookup(assetID)
	require.NoError(err)
	require.True(rec.Resident)
}

func TestMarkArrivedFirstContact(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(1, []byte{0xab, 0xcd})
	err := db.Update(func(txn *badger.Txn) error {
		return reg.MarkArrived(txn, assetID, 1, []byte{0xab, 0xcd}, "ipfs://foreign", 50)
	})
	require.NoError(err)

	rec, err := reg.Lookup(assetID)
	require.NoError(err)
	require.Equal(uint64(1), rec.HomeChainID)
	require.Equal([]byte{0xab, 0xcd}, rec.HomeReference)
	require.True(rec.Resident)
	require.Equal(uint64(50), rec.CreatedAt)
}

func TestInvalidateEvictsStaleLookup(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("cached"))
	err := db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, nftbridge.HubChainID, []byte("cached"), "ipfs://a", 10)
	})
	require.NoError(err)

	// A lookup racing the departure's commit window re-reads the
	// pre-transaction record and re-caches it.
	err = db.Update(func(txn *badger.Txn) error {
		if err := reg.MarkDeparted(txn, assetID, 20); err != nil {
			return err
		}
		rec, err := reg.Lookup(assetID)
		require.NoError(err)
		require.True(rec.Resident)
		return nil
	})
	require.NoError(err)

	// Post-commit invalidation evicts the stale entry so the next
	// lookup sees the committed departure.
	reg.Invalidate(assetID)
	rec, err := reg.Lookup(assetID)
	require.NoError(err)
	require.False(rec.Resident)
}

func TestUpdateURI(t *testing.T) {
	require := require.New(t)
	reg, db := newTestRegistry(t)

	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("meta"))
	err := db.Update(func(txn *badger.Txn) error {
		return reg.RegisterNew(txn, assetID, nftbridge.HubChainID, []byte("meta"), "ipfs://v1", 10)
	})
	require.NoError(err)

	err = db.Update(func(txn *badger.Txn) error {
		return reg.UpdateURI(txn, assetID, "ipfs://v2", 20)
	})
	require.NoError(err)

	rec, err := reg.Lookup(assetID)
	require.NoError(err)
	require.Equal("ipfs://v2", rec.URI)

	// Home fields survive a metadata update.
	require.Equal([]byte("meta"), rec.HomeReference)

	long := make([]byte, nftbridge.MaxURILen+1)
	err = db.Update(func(txn *badger.Txn) error {
		return reg.UpdateURI(txn, assetID, string(long), 30)
	})
	require.ErrorIs(err, nftbridge.ErrDecode)
}
