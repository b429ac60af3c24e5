// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"math"

	"github.com/luxfi/nftbridge"
)

// Bitcoin layout: an OP_RETURN announcement of the asset's movement.
// One-way; there is no transferable representation on Bitcoin, only a
// provable record.
const opReturn = 0x6a

// Home markers in the OP_RETURN summary: hub-native assets advertise
// SOL, everything else EXT.
const (
	markerHub      = "SOL"
	markerExternal = "EXT"
)

// EncodeBitcoin produces opcode + length byte + an ASCII summary
// "NFT:<id>:<uri>:<origin>:<SOL|EXT>".
func EncodeBitcoin(t *nftbridge.Transfer) ([]byte, error) {
	marker := markerExternal
	if t.HomeChainID == nftbridge.HubChainID {
		marker = markerHub
	}

	summary := fmt.Sprintf("NFT:%s:%s:%d:%s", t.AssetID.Hex(), t.URI, t.HomeChainID, marker)
	if len(summary) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: op_return summary length %d exceeds %d",
			nftbridge.ErrDecode, len(summary), math.MaxUint8)
	}

	buf := make([]byte, 0, 2+len(summary))
	buf = append(buf, opReturn, byte(len(summary)))
	return append(buf, summary...), nil
}
