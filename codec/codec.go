// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec serializes transfer descriptors into the wire layout
// of the destination chain family and back. Encoding is two-pass
// (size, then write); decoding validates every attacker-supplied
// offset and length against the real buffer before slicing.
package codec

import (
	"fmt"

	"github.com/luxfi/nftbridge"
)

// Encode serializes t for the destination chain, dispatching on the
// chain's encoding family.
func Encode(table *nftbridge.ChainTable, destChainID uint64, t *nftbridge.Transfer) ([]byte, error) {
	if err := t.Verify(); err != nil {
		return nil, err
	}

	family, ok := table.Family(destChainID)
	if !ok {
		return nil, fmt.Errorf("%w: no encoding family for chain %d", nftbridge.ErrUnsupportedChain, destChainID)
	}

	switch family {
	case nftbridge.FamilyEVM:
		return EncodeEVM(t)
	case nftbridge.FamilyHub:
		return EncodeHub(t)
	case nftbridge.FamilyBitcoin:
		return EncodeBitcoin(t)
	case nftbridge.FamilyGeneric:
		return EncodeGeneric(t)
	default:
		return nil, fmt.Errorf("%w: chain %d has family %s", nftbridge.ErrUnsupportedChain, destChainID, family)
	}
}

// Decode parses a payload received from the source chain. The Bitcoin
// layout is an announcement, not a transfer, and has no decoder.
func Decode(table *nftbridge.ChainTable, sourceChainID uint64, payload []byte) (*nftbridge.Transfer, error) {
	family, ok := table.Family(sourceChainID)
	if !ok {
		return nil, fmt.Errorf("%w: no encoding family for chain %d", nftbridge.ErrUnsupportedChain, sourceChainID)
	}

	var (
		t   *nftbridge.Transfer
		err error
	)
	switch family {
	case nftbridge.FamilyEVM:
		t, err = DecodeEVM(payload)
	case nftbridge.FamilyHub:
		t, err = DecodeHub(payload)
	case nftbridge.FamilyGeneric:
		t, err = DecodeGeneric(payload)
	case nftbridge.FamilyBitcoin:
		return nil, fmt.Errorf("%w: bitcoin layout is encode-only", nftbridge.ErrUnsupportedChain)
	default:
		return nil, fmt.Errorf("%w: chain %d has family %s", nftbridge.ErrUnsupportedChain, sourceChainID, family)
	}
	if err != nil {
		return nil, err
	}

	if err := t.Verify(); err != nil {
		return nil, err
	}
	return t, nil
}

// normalizeAddress reduces a 20- or 32-byte address to its canonical
// 20-byte form by taking the low 20 bytes.
func normalizeAddress(addr []byte) ([]byte, error) {
	switch len(addr) {
	case 20:
		return addr, nil
	case 32:
		return addr[12:], nil
	default:
		return nil, fmt.Errorf("%w: address length %d", nftbridge.ErrDecode, len(addr))
	}
}
