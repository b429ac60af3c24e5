// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/codec"
)

func main() {
	// Derive the canonical asset id of a hub-native token.
	assetID := nftbridge.NewAssetID(nftbridge.HubChainID, []byte("collection/42"))

	recipient := make([]byte, 20)
	recipient[19] = 0xAA

	transfer := &nftbridge.Transfer{
		AssetID:       assetID,
		HomeChainID:   nftbridge.HubChainID,
		HomeReference: []byte("collection/42"),
		Recipient:     recipient,
		URI:           "ipfs://QmExample",
		Nonce:         1,
	}

	// Encode the transfer for an EVM destination.
	table := nftbridge.DefaultChainTable()
	payload, err := codec.Encode(table, 1, transfer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset ID: %s\n", assetID.Hex())
	fmt.Printf("Payload (%d bytes): %x\n", len(payload), payload)

	// The same payload decodes back on delivery.
	decoded, err := codec.Decode(table, 1, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Decoded recipient: %x nonce: %d\n", decoded.Recipient, decoded.Nonce)
}
