// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge orchestrates cross-chain asset transfers. It wires
// the caller verifier, the codec, the replay guard, and the origin
// registry into the inbound and outbound handlers, committing each
// transfer's state transition as one store transaction.
package bridge

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/codec"
	"github.com/luxfi/nftbridge/registry"
	"github.com/luxfi/nftbridge/replay"
	"github.com/luxfi/nftbridge/store"
)

var (
	outboundSeqKey = []byte("seq/outbound")

	inboundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_inbound_transfers_total",
		Help: "Total number of inbound transfers applied",
	})
	outboundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_outbound_transfers_total",
		Help: "Total number of outbound transfers dispatched",
	})
	rejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nftbridge_rejected_transfers_total",
		Help: "Total number of transfers rejected by the handlers",
	})
)

// Envelope is a chain payload in transit between the bridge and the
// relay, carrying the trusted signer's signature when authentication
// is enabled.
type Envelope struct {
	SourceChainID uint64
	DestChainID   uint64
	Payload       []byte
	Signature     [nftbridge.SignatureLen]byte
	V             uint8
}

// Digest returns the hash the trusted signer commits to.
func (e *Envelope) Digest() common.Hash {
	return common.Hash(crypto.Keccak256Hash(e.Payload))
}

// Bytes returns the envelope's wire encoding.
func (e *Envelope) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(e)
}

// ParseEnvelope decodes an envelope from its wire encoding.
func ParseEnvelope(b []byte) (*Envelope, error) {
	env := new(Envelope)
	if err := rlp.DecodeBytes(b, env); err != nil {
		return nil, fmt.Errorf("%w: failed to decode envelope: %s", nftbridge.ErrDecode, err)
	}
	return env, nil
}

// OutboundRequest describes a locally initiated transfer to another
// chain.
type OutboundRequest struct {
	AssetID     ids.ID
	DestChainID uint64
	Sender      []byte
	Recipient   []byte
	GasLimit    uint64
	CallData    []byte
}

// Config carries the collaborators of a Bridge.
type Config struct {
	Logger   log.Logger
	DB       *store.DB
	Trust    nftbridge.TrustConfig
	Chains   *nftbridge.ChainTable
	LocalID  uint64
	Verifier nftbridge.CallerVerifier
	Minter   Minter
	Relay    RelayClient
	Signer   nftbridge.Signer
	Registry *registry.Registry
	Replay   *replay.Guard
	Clock    func() uint64
}

// Bridge applies inbound transfers and dispatches outbound ones.
type Bridge struct {
	logger   log.Logger
	db       *store.DB
	trust    nftbridge.TrustConfig
	chains   *nftbridge.ChainTable
	localID  uint64
	verifier nftbridge.CallerVerifier
	minter   Minter
	relay    RelayClient
	signer   nftbridge.Signer
	registry *registry.Registry
	replay   *replay.Guard
	clock    func() uint64
	paused   atomic.Bool
}

func New(cfg Config) (*Bridge, error) {
	if err := cfg.Trust.Verify(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	b := &Bridge{
		logger:   cfg.Logger,
		db:       cfg.DB,
		trust:    cfg.Trust,
		chains:   cfg.Chains,
		localID:  cfg.LocalID,
		verifier: cfg.Verifier,
		minter:   cfg.Minter,
		relay:    cfg.Relay,
		signer:   cfg.Signer,
		registry: cfg.Registry,
		replay:   cfg.Replay,
		clock:    cfg.Clock,
	}
	b.paused.Store(cfg.Trust.Paused)
	return b, nil
}

// Registry exposes the origin registry for read paths.
func (b *Bridge) Registry() *registry.Registry {
	return b.registry
}

// SetPaused toggles the emergency stop. Only the administrative
// authority may flip it.
func (b *Bridge) SetPaused(caller common.Address, paused bool) error {
	if caller != b.trust.Admin {
		return fmt.Errorf("%w: caller %s is not the admin", nftbridge.ErrOperationNotAllowed, caller)
	}
	b.paused.Store(paused)
	b.logger.Info("bridge pause state changed",
		log.Stringer("caller", caller),
		log.String("paused", fmt.Sprint(paused)),
	)
	return nil
}

// UpdateMetadata is the administrative path for refreshing an asset's
// URI after its origin record exists.
func (b *Bridge) UpdateMetadata(caller common.Address, assetID ids.ID, uri string) error {
	if caller != b.trust.Admin {
		return fmt.Errorf("%w: caller %s is not the admin", nftbridge.ErrOperationNotAllowed, caller)
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return b.registry.UpdateURI(txn, assetID, uri, b.clock())
	}); err != nil {
		return err
	}
	b.registry.Invalidate(assetID)
	return nil
}

// RegisterLocal registers a locally minted asset before its first
// departure.
func (b *Bridge) RegisterLocal(assetID ids.ID, homeReference []byte, uri string) error {
	if err := b.db.Update(func(txn *badger.Txn) error {
		return b.registry.RegisterNew(txn, assetID, b.localID, homeReference, uri, b.clock())
	}); err != nil {
		return err
	}
	b.registry.Invalidate(assetID)
	return nil
}

// HandleInbound applies one delivered transfer. The replay marker, the
// residency flip, and the mint all commit or roll back together.
func (b *Bridge) HandleInbound(ctx context.Context, callCtx nftbridge.CallContext, env *Envelope) (*nftbridge.Transfer, error) {
	if b.paused.Load() {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("%w: bridge is paused", nftbridge.ErrOperationNotAllowed)
	}
	if err := b.verifier.VerifyCaller(callCtx); err != nil {
		rejectedTotal.Inc()
		return nil, err
	}
	if b.trust.RequireAuth {
		if err := nftbridge.VerifyTrustedSigner(env.Digest(), env.Signature, env.V, b.trust.TrustedSigner); err != nil {
			rejectedTotal.Inc()
			return nil, err
		}
	}

	transfer, err := codec.Decode(b.chains, env.SourceChainID, env.Payload)
	if err != nil {
		rejectedTotal.Inc()
		return nil, err
	}

	now := b.clock()
	err = b.db.Update(func(txn *badger.Txn) error {
		if err := b.replay.CheckAndMark(txn, transfer.AssetID, transfer.Nonce, now); err != nil {
			return err
		}
		// Payloads from contract chains carry no origin fields, so
		// the asset must have been attested here before it can
		// arrive from one.
		if family, _ := b.chains.Family(env.SourceChainID); family == nftbridge.FamilyEVM {
			rec, err := b.registry.Get(txn, transfer.AssetID)
			if err != nil {
				return fmt.Errorf("asset not attested: %w", err)
			}
			transfer.HomeChainID = rec.HomeChainID
			transfer.HomeReference = rec.HomeReference
			transfer.URI = rec.URI
		}
		if err := b.registry.MarkArrived(txn, transfer.AssetID, transfer.HomeChainID, transfer.HomeReference, transfer.URI, now); err != nil {
			return err
		}
		// The mint writes through the same transaction, so a commit
		// failure discards it along with the replay marker.
		return b.minter.Mint(ctx, txn, transfer)
	})
	if err != nil {
		rejectedTotal.Inc()
		return nil, err
	}
	b.registry.Invalidate(transfer.AssetID)

	inboundTotal.Inc()
	b.logger.Info("applied inbound transfer",
		log.String("assetID", transfer.AssetID.Hex()),
		log.Uint64("sourceChainID", env.SourceChainID),
		log.Uint64("nonce", transfer.Nonce),
	)
	return transfer, nil
}

// HandleOutbound dispatches one transfer to another chain. The relay
// must accept the envelope before the local representation is burned;
// a rejected envelope leaves the asset untouched.
func (b *Bridge) HandleOutbound(ctx context.Context, req *OutboundRequest) (*Envelope, error) {
	if b.paused.Load() {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("%w: bridge is paused", nftbridge.ErrOperationNotAllowed)
	}
	if !b.chains.Supported(req.DestChainID) {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("%w: destination chain %d", nftbridge.ErrUnsupportedChain, req.DestChainID)
	}

	rec, err := b.registry.Lookup(req.AssetID)
	if err != nil {
		rejectedTotal.Inc()
		return nil, err
	}
	if !rec.Resident {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("%w: asset %x is not resident", nftbridge.ErrOperationNotAllowed, req.AssetID[:])
	}

	var owner []byte
	err = b.db.View(func(txn *badger.Txn) error {
		var err error
		owner, err = b.minter.Owner(ctx, txn, req.AssetID)
		return err
	})
	if err != nil {
		rejectedTotal.Inc()
		return nil, err
	}
	if !bytes.Equal(owner, req.Sender) {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("%w: sender does not own asset %x", nftbridge.ErrOperationNotAllowed, req.AssetID[:])
	}

	nonce, err := b.nextNonce()
	if err != nil {
		return nil, err
	}

	transfer := &nftbridge.Transfer{
		AssetID:       req.AssetID,
		HomeChainID:   rec.HomeChainID,
		HomeReference: rec.HomeReference,
		Recipient:     req.Recipient,
		Sender:        req.Sender,
		URI:           rec.URI,
		Nonce:         nonce,
		Resident:      rec.HomeChainID == req.DestChainID,
		GasLimit:      req.GasLimit,
		CallData:      req.CallData,
	}
	payload, err := codec.Encode(b.chains, req.DestChainID, transfer)
	if err != nil {
		rejectedTotal.Inc()
		return nil, err
	}

	env := &Envelope{
		SourceChainID: b.localID,
		DestChainID:   req.DestChainID,
		Payload:       payload,
	}
	if b.signer != nil {
		sig, v, err := b.signer.Sign(env.Digest())
		if err != nil {
			return nil, fmt.Errorf("failed to sign envelope: %w", err)
		}
		env.Signature = sig
		env.V = v
	}

	if err := b.relay.Send(ctx, env); err != nil {
		rejectedTotal.Inc()
		return nil, fmt.Errorf("relay rejected envelope: %w", err)
	}

	now := b.clock()
	err = b.db.Update(func(txn *badger.Txn) error {
		if err := b.registry.MarkDeparted(txn, req.AssetID, now); err != nil {
			return err
		}
		return b.minter.Burn(ctx, txn, req.AssetID)
	})
	if err != nil {
		return nil, err
	}
	b.registry.Invalidate(req.AssetID)

	outboundTotal.Inc()
	b.logger.Info("dispatched outbound transfer",
		log.String("assetID", req.AssetID.Hex()),
		log.Uint64("destChainID", req.DestChainID),
		log.Uint64("nonce", nonce),
	)
	return env, nil
}

// nextNonce allocates the next outbound sequence number. Allocation
// commits on its own so a later relay failure burns the nonce rather
// than reusing it.
func (b *Bridge) nextNonce() (uint64, error) {
	var nonce uint64
	err := b.db.Update(func(txn *badger.Txn) error {
		val, ok, err := store.GetValue(txn, outboundSeqKey)
		if err != nil {
			return err
		}
		if ok {
			if err := rlp.DecodeBytes(val, &nonce); err != nil {
				return fmt.Errorf("failed to decode outbound sequence: %w", err)
			}
		}
		next, err := nftbridge.AddUint64(nonce, 1)
		if err != nil {
			return err
		}
		enc, err := rlp.EncodeToBytes(next)
		if err != nil {
			return err
		}
		return txn.Set(outboundSeqKey, enc)
	})
	return nonce, err
}
