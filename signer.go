// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/crypto"
)

// Signer produces trusted-signer authorizations over message digests.
type Signer interface {
	// Sign returns the compact signature and recovery indicator for
	// the digest.
	Sign(hash common.Hash) ([SignatureLen]byte, byte, error)

	// Address returns the address signatures recover to.
	Address() common.Address
}

var _ Signer = (*keySigner)(nil)

type keySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewSigner wraps a secp256k1 private key as a Signer.
func NewSigner(key *ecdsa.PrivateKey) Signer {
	return &keySigner{
		key:  key,
		addr: common.Address(crypto.PubkeyToAddress(key.PublicKey)),
	}
}

func (s *keySigner) Sign(hash common.Hash) ([SignatureLen]byte, byte, error) {
	var sig [SignatureLen]byte
	full, err := crypto.Sign(hash[:], s.key)
	if err != nil {
		return sig, 0, fmt.Errorf("failed to sign digest: %w", err)
	}
	copy(sig[:], full[:SignatureLen])
	return sig, full[SignatureLen], nil
}

func (s *keySigner) Address() common.Address {
	return s.addr
}
