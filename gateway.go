// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// Operation is one entry in the host's atomic execution batch, in
// issue order.
type Operation struct {
	// Issuer is the identity that issued the operation.
	Issuer common.Address
}

// CallContext exposes what the host knows about the call currently
// being handled. Hosts differ: some can name the immediate caller
// directly, others only expose the batch the call executes in.
type CallContext interface {
	// Caller returns the immediate caller identity when the host has a
	// native identity channel. ok is false when it does not.
	Caller() (caller common.Address, ok bool)

	// Operations returns the ordered operations of the current atomic
	// batch and the index of the current one. ok is false when batch
	// introspection is unavailable.
	Operations() (ops []Operation, current int, ok bool)
}

// CallerVerifier decides whether the current call was issued by the
// trusted relay. Implementations fail closed: when the context cannot
// prove relay origin the call is rejected.
type CallerVerifier interface {
	VerifyCaller(ctx CallContext) error
}

// IntrospectionVerifier authenticates the relay by batch introspection:
// the operation immediately preceding the current one must have been
// issued by the relay. This substitutes for a direct caller-identity
// check on hosts that do not provide one.
type IntrospectionVerifier struct {
	relay common.Address
}

var _ CallerVerifier = (*IntrospectionVerifier)(nil)

func NewIntrospectionVerifier(relay common.Address) *IntrospectionVerifier {
	return &IntrospectionVerifier{relay: relay}
}

func (g *IntrospectionVerifier) VerifyCaller(ctx CallContext) error {
	if ctx == nil {
		return fmt.Errorf("%w: no call context", ErrInvalidCaller)
	}
	ops, current, ok := ctx.Operations()
	if !ok {
		return fmt.Errorf("%w: batch introspection unavailable", ErrInvalidCaller)
	}
	if current <= 0 || current >= len(ops) {
		return fmt.Errorf("%w: no preceding operation in batch", ErrInvalidCaller)
	}
	if issuer := ops[current-1].Issuer; issuer != g.relay {
		return fmt.Errorf("%w: preceding operation issued by %s, want relay %s",
			ErrInvalidCaller, issuer.Hex(), g.relay.Hex())
	}
	return nil
}

// DirectVerifier authenticates the relay through the host's native
// caller-identity channel (a signed header, mTLS peer, or the runtime
// caller itself).
type DirectVerifier struct {
	relay common.Address
}

var _ CallerVerifier = (*DirectVerifier)(nil)

func NewDirectVerifier(relay common.Address) *DirectVerifier {
	return &DirectVerifier{relay: relay}
}

func (g *DirectVerifier) VerifyCaller(ctx CallContext) error {
	if ctx == nil {
		return fmt.Errorf("%w: no call context", ErrInvalidCaller)
	}
	caller, ok := ctx.Caller()
	if !ok {
		return fmt.Errorf("%w: caller identity unavailable", ErrInvalidCaller)
	}
	if caller != g.relay {
		return fmt.Errorf("%w: caller %s, want relay %s", ErrInvalidCaller, caller.Hex(), g.relay.Hex())
	}
	return nil
}
