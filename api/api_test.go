// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/bridge"
	"github.com/luxfi/nftbridge/codec"
	"github.com/luxfi/nftbridge/ledger"
	"github.com/luxfi/nftbridge/registry"
	"github.com/luxfi/nftbridge/replay"
	"github.com/luxfi/nftbridge/store"
)

const (
	testGenericChain = uint64(500)
	testRelayAPIKey  = "relay-secret"
)

var testRelayAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")

type fakeRelay struct {
	sent int
}

func (r *fakeRelay) Send(context.Context, *bridge.Envelope) error {
	r.sent++
	return nil
}

type apiEnv struct {
	server *httptest.Server
	bridge *bridge.Bridge
	ledger *ledger.Ledger
	table  *nftbridge.ChainTable
}

func newAPIEnv(t *testing.T) *apiEnv {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	table := nftbridge.DefaultChainTable()
	table.Register(testGenericChain, nftbridge.FamilyGeneric)

	logger := log.NewNoOpLogger()
	custody := ledger.New(db)
	b, err := bridge.New(bridge.Config{
		Logger:   logger,
		DB:       db,
		Trust:    nftbridge.TrustConfig{Relay: testRelayAddr},
		Chains:   table,
		LocalID:  nftbridge.HubChainID,
		Verifier: nftbridge.NewDirectVerifier(testRelayAddr),
		Minter:   custody,
		Relay:    &fakeRelay{},
		Registry: registry.New(db, 0),
		Replay:   replay.New(db, logger),
		Clock:    func() uint64 { return 1000 },
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	RegisterHandlers(logger, mux, b, testRelayAddr, testRelayAPIKey)
	RegisterHealthCheck(mux, func(context.Context) error { return nil })

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &apiEnv{server: server, bridge: b, ledger: custody, table: table}
}

func postJSONWithKey(t *testing.T, url, key string, body any) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(RelayAPIKeyHeader, key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	return postJSONWithKey(t, url, testRelayAPIKey, body)
}

func TestInboundEndpoint(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	owner := make([]byte, 20)
	owner[0] = 0xaa
	foreign := &nftbridge.Transfer{
		AssetID:       nftbridge.NewAssetID(testGenericChain, []byte("asset-1")),
		HomeChainID:   testGenericChain,
		HomeReference: []byte("asset-1"),
		Recipient:     owner,
		Sender:        owner,
		URI:           "ipfs://asset-1",
		Nonce:         7,
	}
	payload, err := codec.Encode(env.table, testGenericChain, foreign)
	require.NoError(err)

	req := InboundRequest{
		SourceChainID: testGenericChain,
		Payload:       hex.EncodeToString(payload),
	}
	resp := postJSON(t, env.server.URL+InboundPath, req)
	require.Equal(http.StatusOK, resp.StatusCode)

	var inResp InboundResponse
	require.NoError(json.NewDecoder(resp.Body).Decode(&inResp))
	require.Equal(foreign.AssetID.Hex(), inResp.AssetID)
	require.Equal(uint64(7), inResp.Nonce)

	// The origin endpoint now reports a resident record.
	originResp, err := http.Get(env.server.URL + OriginPath + "?asset-id=" + foreign.AssetID.Hex())
	require.NoError(err)
	defer originResp.Body.Close()
	require.Equal(http.StatusOK, originResp.StatusCode)

	var origin OriginResponse
	require.NoError(json.NewDecoder(originResp.Body).Decode(&origin))
	require.True(origin.Resident)
	require.Equal(testGenericChain, origin.HomeChainID)

	// Redelivery conflicts.
	resp = postJSON(t, env.server.URL+InboundPath, req)
	require.Equal(http.StatusConflict, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(int32(nftbridge.CodeReplayDetected), errResp.Code)
}

func TestInboundEndpointRequiresRelayKey(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	req := InboundRequest{
		SourceChainID: testGenericChain,
		Payload:       "00",
	}
	for _, key := range []string{"", "wrong-secret"} {
		resp := postJSONWithKey(t, env.server.URL+InboundPath, key, req)
		require.Equal(http.StatusForbidden, resp.StatusCode)

		var errResp ErrorResponse
		require.NoError(json.NewDecoder(resp.Body).Decode(&errResp))
		require.Equal(int32(nftbridge.CodeInvalidCaller), errResp.Code)
	}

	// The outbound and origin endpoints are user-facing and take no
	// relay key.
	resp := postJSONWithKey(t, env.server.URL+OutboundPath, "", OutboundRequest{
		AssetID:     nftbridge.NewAssetID(1, []byte("x")).Hex(),
		DestChainID: 9999,
		Sender:      "00",
		Recipient:   "00",
	})
	require.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestInboundEndpointBadPayload(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	resp := postJSON(t, env.server.URL+InboundPath, InboundRequest{
		SourceChainID: testGenericChain,
		Payload:       "not-hex",
	})
	require.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestOutboundEndpoint(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	owner := make([]byte, 20)
	owner[0] = 0xaa
	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("local-1"))
	require.NoError(env.bridge.RegisterLocal(assetID, []byte("local-1"), "ipfs://local-1"))
	require.NoError(env.ledger.Assign(assetID, owner))

	resp := postJSON(t, env.server.URL+OutboundPath, OutboundRequest{
		AssetID:     assetID.Hex(),
		DestChainID: 1,
		Sender:      hex.EncodeToString(owner),
		Recipient:   hex.EncodeToString(owner),
	})
	require.Equal(http.StatusOK, resp.StatusCode)

	var outResp OutboundResponse
	require.NoError(json.NewDecoder(resp.Body).Decode(&outResp))

	envBytes, err := hex.DecodeString(outResp.Envelope)
	require.NoError(err)
	parsed, err := bridge.ParseEnvelope(envBytes)
	require.NoError(err)
	require.Equal(uint64(1), parsed.DestChainID)

	rec, err := env.bridge.Registry().Lookup(assetID)
	require.NoError(err)
	require.False(rec.Resident)
}

func TestOutboundEndpointUnsupportedChain(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	resp := postJSON(t, env.server.URL+OutboundPath, OutboundRequest{
		AssetID:     nftbridge.NewAssetID(1, []byte("x")).Hex(),
		DestChainID: 9999,
		Sender:      "00",
		Recipient:   "00",
	})
	require.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	require := require.New(t)
	env := newAPIEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
}
