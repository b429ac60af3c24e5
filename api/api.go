// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves the bridge node's HTTP interface: transfer
// delivery and initiation plus origin record inspection.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/bridge"
)

const (
	InboundPath  = "/v1/transfers/inbound"
	OutboundPath = "/v1/transfers/outbound"
	OriginPath   = "/v1/origin"

	// RelayAPIKeyHeader carries the shared secret that authenticates
	// the relay on the inbound delivery channel.
	RelayAPIKeyHeader = "X-Relay-Api-Key"

	defaultRequestTimeout = 30 * time.Second
)

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nftbridge_api_requests_total",
		Help: "Total number of API requests by path",
	}, []string{"path"})
	requestLatency = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nftbridge_api_request_latency_ms",
		Help: "Latency of the last API request by path",
	}, []string{"path"})
)

// InboundRequest delivers one envelope from the relay.
type InboundRequest struct {
	// Source chain of the transfer.
	SourceChainID uint64 `json:"source-chain-id"`
	// hex-encoded payload, optionally prefixed with "0x".
	Payload string `json:"payload"`
	// hex-encoded 65-byte signature with trailing recovery id.
	// Required when the bridge enforces signer authentication.
	Signature string `json:"signature"`
}

type InboundResponse struct {
	AssetID string `json:"asset-id"`
	Nonce   uint64 `json:"nonce"`
	URI     string `json:"uri"`
}

// OutboundRequest initiates a transfer to another chain.
type OutboundRequest struct {
	// hex-encoded 32-byte asset id.
	AssetID string `json:"asset-id"`
	// Destination chain of the transfer.
	DestChainID uint64 `json:"dest-chain-id"`
	// hex-encoded sender address on this ledger.
	Sender string `json:"sender"`
	// hex-encoded recipient address on the destination chain.
	Recipient string `json:"recipient"`
	// Optional execution budget for the destination.
	GasLimit uint64 `json:"gas-limit"`
	// Optional hex-encoded contract call data.
	CallData string `json:"call-data"`
}

type OutboundResponse struct {
	// hex encoding of the relayed envelope.
	Envelope string `json:"envelope"`
}

type OriginResponse struct {
	AssetID       string `json:"asset-id"`
	HomeChainID   uint64 `json:"home-chain-id"`
	HomeReference string `json:"home-reference"`
	URI           string `json:"uri"`
	Resident      bool   `json:"resident"`
	CreatedAt     uint64 `json:"created-at"`
	UpdatedAt     uint64 `json:"updated-at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int32  `json:"code"`
}

// relayCall reports the relay as the native caller of an API-delivered
// transfer. It is only synthesized after the request has authenticated
// as the relay; the HTTP interface is the relay's own delivery
// channel, so batch introspection does not apply.
type relayCall struct {
	relay common.Address
}

func (c relayCall) Caller() (common.Address, bool) {
	return c.relay, true
}

func (c relayCall) Operations() ([]nftbridge.Operation, int, bool) {
	return nil, 0, false
}

// RegisterHandlers mounts the bridge API on mux. relayAPIKey is the
// shared secret the relay must present on inbound deliveries; when it
// is empty the channel itself is unauthenticated and the bridge's
// signer authentication must carry the trust.
func RegisterHandlers(logger log.Logger, mux *http.ServeMux, b *bridge.Bridge, relay common.Address, relayAPIKey string) {
	mux.Handle(InboundPath, inboundHandler(logger, b, relay, relayAPIKey))
	mux.Handle(OutboundPath, outboundHandler(logger, b))
	mux.Handle(OriginPath, originHandler(logger, b))
}

func writeJSONError(
	logger log.Logger,
	w http.ResponseWriter,
	httpStatusCode int,
	handlerErr error,
) {
	resp, err := json.Marshal(ErrorResponse{
		Error: handlerErr.Error(),
		Code:  int32(nftbridge.CodeOf(handlerErr)),
	})
	if err != nil {
		msg := "Error marshalling JSON error response"
		logger.Error(msg, log.Err(err))
		resp = []byte(msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	if _, err = w.Write(resp); err != nil {
		logger.Error("Error writing error response", log.Err(err))
	}
}

func writeJSON(logger log.Logger, w http.ResponseWriter, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		writeJSONError(logger, w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(resp); err != nil {
		logger.Error("Error writing response", log.Err(err))
	}
}

// statusOf maps a handler failure to an HTTP status.
func statusOf(err error) int {
	switch nftbridge.CodeOf(err) {
	case nftbridge.CodeDecode, nftbridge.CodeUnsupportedChain:
		return http.StatusBadRequest
	case nftbridge.CodeInvalidSignature,
		nftbridge.CodeUnauthorizedSigner,
		nftbridge.CodeInvalidCaller:
		return http.StatusForbidden
	case nftbridge.CodeReplayDetected, nftbridge.CodeOriginConflict:
		return http.StatusConflict
	case nftbridge.CodeOperationNotAllowed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeHex(s string) string {
	return strings.TrimPrefix(s, "0x")
}

func parseAssetID(s string) (ids.ID, error) {
	b, err := hex.DecodeString(sanitizeHex(s))
	if err != nil {
		return ids.ID{}, fmt.Errorf("invalid asset id hex: %w", err)
	}
	if len(b) != len(ids.ID{}) {
		return ids.ID{}, fmt.Errorf("invalid asset id: expected %d bytes, got %d", len(ids.ID{}), len(b))
	}
	var id ids.ID
	copy(id[:], b)
	return id, nil
}

func inboundHandler(logger log.Logger, b *bridge.Bridge, relay common.Address, relayAPIKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.WithLabelValues(InboundPath).Inc()
		startTime := time.Now()

		if relayAPIKey != "" {
			presented := r.Header.Get(RelayAPIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(relayAPIKey)) != 1 {
				logger.Warn("inbound delivery with missing or wrong relay api key")
				writeJSONError(logger, w, http.StatusForbidden,
					fmt.Errorf("%w: request is not authenticated as the relay", nftbridge.ErrInvalidCaller))
				return
			}
		}

		var req InboundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("could not decode request body", log.Err(err))
			writeJSONError(logger, w, http.StatusBadRequest, err)
			return
		}

		payload, err := hex.DecodeString(sanitizeHex(req.Payload))
		if err != nil {
			logger.Warn("could not decode payload", log.Err(err))
			writeJSONError(logger, w, http.StatusBadRequest, fmt.Errorf("invalid payload hex: %w", err))
			return
		}

		env := &bridge.Envelope{
			SourceChainID: req.SourceChainID,
			Payload:       payload,
		}
		if req.Signature != "" {
			sigBytes, err := hex.DecodeString(sanitizeHex(req.Signature))
			if err != nil || len(sigBytes) != nftbridge.SignatureLen+1 {
				writeJSONError(logger, w, http.StatusBadRequest,
					fmt.Errorf("invalid signature: expected %d hex bytes", nftbridge.SignatureLen+1))
				return
			}
			copy(env.Signature[:], sigBytes)
			env.V = sigBytes[nftbridge.SignatureLen]
		}

		ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
		defer cancel()

		transfer, err := b.HandleInbound(ctx, relayCall{relay: relay}, env)
		if err != nil {
			logger.Warn("inbound transfer rejected", log.Err(err))
			writeJSONError(logger, w, statusOf(err), err)
			return
		}

		writeJSON(logger, w, InboundResponse{
			AssetID: transfer.AssetID.Hex(),
			Nonce:   transfer.Nonce,
			URI:     transfer.URI,
		})
		requestLatency.WithLabelValues(InboundPath).Set(
			float64(time.Since(startTime).Milliseconds()),
		)
	})
}

func outboundHandler(logger log.Logger, b *bridge.Bridge) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.WithLabelValues(OutboundPath).Inc()
		startTime := time.Now()

		var req OutboundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("could not decode request body", log.Err(err))
			writeJSONError(logger, w, http.StatusBadRequest, err)
			return
		}

		assetID, err := parseAssetID(req.AssetID)
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, err)
			return
		}
		sender, err := hex.DecodeString(sanitizeHex(req.Sender))
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, fmt.Errorf("invalid sender hex: %w", err))
			return
		}
		recipient, err := hex.DecodeString(sanitizeHex(req.Recipient))
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, fmt.Errorf("invalid recipient hex: %w", err))
			return
		}
		callData, err := hex.DecodeString(sanitizeHex(req.CallData))
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, fmt.Errorf("invalid call data hex: %w", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
		defer cancel()

		env, err := b.HandleOutbound(ctx, &bridge.OutboundRequest{
			AssetID:     assetID,
			DestChainID: req.DestChainID,
			Sender:      sender,
			Recipient:   recipient,
			GasLimit:    req.GasLimit,
			CallData:    callData,
		})
		if err != nil {
			logger.Warn("outbound transfer rejected", log.Err(err))
			writeJSONError(logger, w, statusOf(err), err)
			return
		}

		envBytes, err := env.Bytes()
		if err != nil {
			writeJSONError(logger, w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(logger, w, OutboundResponse{
			Envelope: hex.EncodeToString(envBytes),
		})
		requestLatency.WithLabelValues(OutboundPath).Set(
			float64(time.Since(startTime).Milliseconds()),
		)
	})
}

func originHandler(logger log.Logger, b *bridge.Bridge) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.WithLabelValues(OriginPath).Inc()

		assetID, err := parseAssetID(r.URL.Query().Get("asset-id"))
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, err)
			return
		}

		rec, err := b.Registry().Lookup(assetID)
		if err != nil {
			writeJSONError(logger, w, http.StatusNotFound, err)
			return
		}

		writeJSON(logger, w, OriginResponse{
			AssetID:       rec.AssetID.Hex(),
			HomeChainID:   rec.HomeChainID,
			HomeReference: hex.EncodeToString(rec.HomeReference),
			URI:           rec.URI,
			Resident:      rec.Resident,
			CreatedAt:     rec.CreatedAt,
			UpdatedAt:     rec.UpdatedAt,
		})
	})
}
