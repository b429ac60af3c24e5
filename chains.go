// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"github.com/luxfi/math/set"
)

// Family identifies the wire encoding used for a remote ledger.
type Family uint8

const (
	FamilyUnknown Family = iota
	// FamilyEVM covers ledgers that consume ABI-style word-aligned
	// payloads (Ethereum and compatible chains).
	FamilyEVM
	// FamilyHub is the hub ledger's native length-prefixed layout.
	FamilyHub
	// FamilyBitcoin is the OP_RETURN announcement layout. Encode only.
	FamilyBitcoin
	// FamilyGeneric is the length-prefixed fallback for ledgers without
	// a dedicated layout.
	FamilyGeneric
)

// FamilyFromString parses the textual family name used in
// configuration files.
func FamilyFromString(s string) (Family, bool) {
	switch s {
	case "evm":
		return FamilyEVM, true
	case "hub":
		return FamilyHub, true
	case "bitcoin":
		return FamilyBitcoin, true
	case "generic":
		return FamilyGeneric, true
	default:
		return FamilyUnknown, false
	}
}

func (f Family) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilyHub:
		return "hub"
	case FamilyBitcoin:
		return "bitcoin"
	case FamilyGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Well-known chain identifiers. EVM chains use their EIP-155 ids.
// Bitcoin has no native chain id, so the relay assigns one.
const (
	HubChainID     uint64 = 101
	BitcoinChainID uint64 = 1000
)

// ChainTable maps relay chain identifiers to their encoding family and
// tracks which destinations transfers may be sent to.
type ChainTable struct {
	families  map[uint64]Family
	supported set.Set[uint64]
}

func NewChainTable() *ChainTable {
	return &ChainTable{
		families:  make(map[uint64]Family),
		supported: set.NewSet[uint64](8),
	}
}

// DefaultChainTable returns a table covering the hub chain, Bitcoin and
// the commonly bridged EVM networks.
func DefaultChainTable() *ChainTable {
	t := NewChainTable()
	t.Register(HubChainID, FamilyHub)
	t.Register(BitcoinChainID, FamilyBitcoin)
	for _, id := range []uint64{1, 10, 56, 137, 8453, 42161, 43114} {
		t.Register(id, FamilyEVM)
	}
	return t
}

// Register adds or overrides the family mapping for a chain and marks
// the chain as a supported destination.
func (t *ChainTable) Register(chainID uint64, family Family) {
	t.families[chainID] = family
	t.supported.Add(chainID)
}

// Family returns the encoding family for a chain. Unregistered chains
// report FamilyUnknown with ok false.
func (t *ChainTable) Family(chainID uint64) (Family, bool) {
	f, ok := t.families[chainID]
	if !ok {
		return FamilyUnknown, false
	}
	return f, true
}

// Supported reports whether transfers may target the chain.
func (t *ChainTable) Supported(chainID uint64) bool {
	return t.supported.Contains(chainID)
}

// Chains returns all registered chain ids.
func (t *ChainTable) Chains() []uint64 {
	return t.supported.List()
}
