// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/ids"

	"github.com/luxfi/nftbridge"
)

// Minter is the local ledger's token surface. Mint materializes the
// arriving representation, Burn retires the departing one, and Owner
// reports who currently holds an asset here. Every method runs inside
// the handler's store transaction, so the ledger write commits or
// rolls back together with the replay marker and the origin
// transition. An implementation must not commit on its own.
type Minter interface {
	Mint(ctx context.Context, txn *badger.Txn, transfer *nftbridge.Transfer) error
	Burn(ctx context.Context, txn *badger.Txn, assetID ids.ID) error
	Owner(ctx context.Context, txn *badger.Txn, assetID ids.ID) ([]byte, error)
}

// RelayClient hands a sealed envelope to the relay for delivery on the
// destination chain. Send returns once the relay has accepted the
// envelope, not once it is delivered.
type RelayClient interface {
	Send(ctx context.Context, envelope *Envelope) error
}
