// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"errors"
	"fmt"
)

// Failure conditions of the transfer protocol. Every one of them is
// detected before any persistent effect, so a failed invocation leaves
// no partial state behind.
var (
	// ErrDecode is returned for malformed wire data.
	ErrDecode = errors.New("malformed transfer message")

	// ErrReplayDetected is returned when an (asset, nonce) pair has
	// already been processed. It is permanent for those inputs.
	ErrReplayDetected = errors.New("replay detected")

	// ErrInvalidSignature is returned when a signature fails sanity
	// checks or public key recovery.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnauthorizedSigner is returned when a signature recovers to an
	// address other than the configured trusted signer.
	ErrUnauthorizedSigner = errors.New("unauthorized signer")

	// ErrInvalidCaller is returned when the gateway origin check cannot
	// attribute the current call to the trusted relay.
	ErrInvalidCaller = errors.New("invalid caller")

	// ErrOriginConflict is returned when a registration disagrees with
	// the home fields of an existing origin record.
	ErrOriginConflict = errors.New("origin record conflict")

	// ErrUnsupportedChain is returned for destination or source chains
	// the codec has no family mapping for.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrOperationNotAllowed is returned when transfers are paused or a
	// validation gate rejects the request.
	ErrOperationNotAllowed = errors.New("operation not allowed")

	// ErrArithmeticOverflow is returned when a persisted counter would
	// wrap.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// Code is a stable numeric identifier for a protocol failure, suitable
// for surfacing across an RPC or host boundary.
type Code int32

const (
	CodeUnknown Code = iota
	CodeDecode
	CodeReplayDetected
	CodeInvalidSignature
	CodeUnauthorizedSigner
	CodeInvalidCaller
	CodeOriginConflict
	CodeUnsupportedChain
	CodeOperationNotAllowed
	CodeArithmeticOverflow
)

var sentinelCodes = []struct {
	err  error
	code Code
}{
	{ErrDecode, CodeDecode},
	{ErrReplayDetected, CodeReplayDetected},
	{ErrInvalidSignature, CodeInvalidSignature},
	{ErrUnauthorizedSigner, CodeUnauthorizedSigner},
	{ErrInvalidCaller, CodeInvalidCaller},
	{ErrOriginConflict, CodeOriginConflict},
	{ErrUnsupportedChain, CodeUnsupportedChain},
	{ErrOperationNotAllowed, CodeOperationNotAllowed},
	{ErrArithmeticOverflow, CodeArithmeticOverflow},
}

// CodeOf maps an error to its protocol code, unwrapping as needed.
// Errors outside the taxonomy map to CodeUnknown.
func CodeOf(err error) Code {
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}
	return CodeUnknown
}

// Error is a structured protocol error carrying a stable code together
// with diagnostic text. Used by hosts that report results as
// code+message pairs.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bridge error %d: %s", e.Code, e.Message)
}

// NewError converts any error produced by the protocol into its
// structured form.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeOf(err), Message: err.Error()}
}
