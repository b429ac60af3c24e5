// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package replay persists a marker for every consumed inbound
// transfer so a delivered message can never be applied twice.
package replay

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/store"
)

var (
	consumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_transfers_consumed_total",
		Help: "Total number of inbound transfers marked as consumed",
	})
	replaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_replays_rejected_total",
		Help: "Total number of inbound transfers rejected as replays",
	})
)

// Marker is the persistent record of one consumed transfer.
type Marker struct {
	ConsumedAt uint64
}

// Key returns the store key for the (asset, nonce) pair.
func Key(assetID ids.ID, nonce uint64) []byte {
	return fmt.Appendf(nil, "replay/%x/%d", assetID[:], nonce)
}

// Guard is the replay filter over consumed (asset, nonce) pairs.
type Guard struct {
	db     *store.DB
	logger log.Logger
}

func New(db *store.DB, logger log.Logger) *Guard {
	return &Guard{
		db:     db,
		logger: logger,
	}
}

// CheckAndMark atomically tests whether the (asset, nonce) pair was
// already consumed and, if not, marks it within txn. The marker only
// becomes durable when the transaction commits, so a handler that
// fails after this call leaves the pair unconsumed.
func (g *Guard) CheckAndMark(txn *badger.Txn, assetID ids.ID, nonce uint64, now uint64) error {
	key := Key(assetID, nonce)
	_, ok, err := store.GetValue(txn, key)
	if err != nil {
		return fmt.Errorf("failed to read replay marker: %w", err)
	}
	if ok {
		replaysTotal.Inc()
		return fmt.Errorf("%w: asset %x nonce %d", nftbridge.ErrReplayDetected, assetID[:], nonce)
	}

	val, err := rlp.EncodeToBytes(&Marker{ConsumedAt: now})
	if err != nil {
		return fmt.Errorf("failed to encode replay marker: %w", err)
	}
	if err := txn.Set(key, val); err != nil {
		return fmt.Errorf("failed to write replay marker: %w", err)
	}
	consumedTotal.Inc()
	return nil
}

// Consumed reports whether the (asset, nonce) pair was already
// consumed.
func (g *Guard) Consumed(assetID ids.ID, nonce uint64) (bool, error) {
	var ok bool
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		_, ok, err = store.GetValue(txn, Key(assetID, nonce))
		return err
	})
	return ok, err
}

// pruneBatchSize bounds how many deletes share one transaction so a
// large retention pass cannot overflow it.
const pruneBatchSize = 1000

// PruneBefore deletes markers consumed strictly before cutoff and
// returns how many were removed. With dryRun set it only counts.
// Markers are retained indefinitely unless an operator runs this.
func (g *Guard) PruneBefore(cutoff uint64, dryRun bool) (uint64, error) {
	prefix := []byte("replay/")
	var stale [][]byte
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var marker Marker
			if err := item.Value(func(val []byte) error {
				return rlp.DecodeBytes(val, &marker)
			}); err != nil {
				g.logger.Warn("skipping undecodable replay marker",
					log.String("key", string(item.Key())),
					log.Err(err),
				)
				continue
			}
			if marker.ConsumedAt < cutoff {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	pruned := uint64(len(stale))
	if !dryRun {
		for start := 0; start < len(stale); start += pruneBatchSize {
			end := min(start+pruneBatchSize, len(stale))
			err := g.db.Update(func(txn *badger.Txn) error {
				for _, key := range stale[start:end] {
					if err := txn.Delete(key); err != nil {
						return fmt.Errorf("failed to delete replay marker: %w", err)
					}
				}
				return nil
			})
			if err != nil {
				return 0, err
			}
		}
	}
	mode := "delete"
	if dryRun {
		mode = "dry-run"
	}
	g.logger.Info("pruned replay markers",
		log.Uint64("cutoff", cutoff),
		log.Uint64("pruned", pruned),
		log.String("mode", mode),
	)
	return pruned, nil
}
