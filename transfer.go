// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package nftbridge implements the core of a cross-chain transfer
// protocol for non-fungible assets. An asset keeps a single canonical
// 32-byte identity across ledgers; the packages under this module
// encode transfer messages per destination family, track each asset's
// origin and residency, reject replayed messages, and authenticate the
// relay and the trusted signer.
package nftbridge

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/ids"
)

const (
	// MaxURILen bounds the metadata URI carried on the wire.
	MaxURILen = 200

	// MaxReferenceLen bounds the home-chain reference (a contract
	// address plus token id, a mint address, an outpoint, ...).
	MaxReferenceLen = 128
)

// NewAssetID derives the canonical identity of an asset from its
// minting context. The derivation is deterministic, so every ledger
// that learns the home fields computes the same id.
func NewAssetID(homeChainID uint64, homeReference []byte) ids.ID {
	buf := make([]byte, 8, 8+len(homeReference))
	binary.BigEndian.PutUint64(buf, homeChainID)
	buf = append(buf, homeReference...)
	return ids.ID(crypto.Keccak256Hash(buf))
}

// Transfer is the canonical descriptor of one asset movement. The wire
// families in package codec each carry a projection of it; fields a
// family cannot represent are resolved from the origin registry by the
// handlers.
type Transfer struct {
	// AssetID is the canonical 32-byte identity of the asset.
	AssetID ids.ID

	// HomeChainID is the chain the asset was first minted on.
	HomeChainID uint64

	// HomeReference locates the original asset on its home chain.
	HomeReference []byte

	// Recipient receives the asset on the destination chain. 20 or 32
	// bytes depending on the destination's address scheme.
	Recipient []byte

	// Sender initiated the transfer on the source chain.
	Sender []byte

	// URI points at the asset's metadata document.
	URI string

	// Nonce is unique per message and keys the replay guard together
	// with AssetID.
	Nonce uint64

	// Resident reports whether the live representation sits on the
	// asset's home chain at the time the message was emitted.
	Resident bool

	// GasLimit is the execution budget forwarded to hub-native
	// destinations. Zero for plain transfers.
	GasLimit uint64

	// CallData is an optional invocation forwarded to hub-native
	// destinations alongside the mint.
	CallData []byte
}

func validAddressLen(n int) bool {
	return n == 20 || n == 32
}

// Verify checks the descriptor's field bounds. It does not consult any
// state; residency and origin consistency are the handlers' business.
func (t *Transfer) Verify() error {
	if !validAddressLen(len(t.Recipient)) {
		return fmt.Errorf("%w: recipient address length %d", ErrDecode, len(t.Recipient))
	}
	if len(t.Sender) != 0 && !validAddressLen(len(t.Sender)) {
		return fmt.Errorf("%w: sender address length %d", ErrDecode, len(t.Sender))
	}
	if len(t.URI) > MaxURILen {
		return fmt.Errorf("%w: uri length %d exceeds %d", ErrDecode, len(t.URI), MaxURILen)
	}
	if len(t.HomeReference) > MaxReferenceLen {
		return fmt.Errorf("%w: home reference length %d exceeds %d", ErrDecode, len(t.HomeReference), MaxReferenceLen)
	}
	return nil
}
