// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"errors"

	"github.com/luxfi/geth/common"
)

// TrustConfig is the read-only trust anchor supplied by the
// surrounding configuration management. The core never mutates it and
// never reads it from ambient state; every operation receives it
// explicitly.
type TrustConfig struct {
	// Relay is the identity the gateway origin check requires on the
	// operation preceding an inbound call.
	Relay common.Address

	// TrustedSigner authorizes privileged messages.
	TrustedSigner common.Address

	// Admin may update asset metadata and run retention passes.
	Admin common.Address

	// RequireAuth demands a trusted-signer signature on every inbound
	// transfer when set.
	RequireAuth bool

	// Paused rejects both transfer directions when set.
	Paused bool
}

// Verify rejects configurations that would fail open.
func (c *TrustConfig) Verify() error {
	if c.Relay == (common.Address{}) {
		return errors.New("trust config: relay identity not set")
	}
	if c.RequireAuth && c.TrustedSigner == (common.Address{}) {
		return errors.New("trust config: auth required but no trusted signer")
	}
	return nil
}
