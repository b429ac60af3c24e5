// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/luxfi/ids"
	"github.com/luxfi/nftbridge"
)

// Generic layout: the length-prefixed fallback for chains without a
// dedicated family. Carries the descriptor minus the hub-only
// execution fields.
const genericVersion = 1

// EncodeGeneric serializes the transfer into the generic layout.
func EncodeGeneric(t *nftbridge.Transfer) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(genericVersion)
	buf.Write(t.AssetID[:])
	writeUint64(buf, t.HomeChainID)
	writeUint64(buf, t.Nonce)

	var flags byte
	if t.Resident {
		flags |= residentFlag
	}
	buf.WriteByte(flags)

	writeBytes16(buf, t.HomeReference)
	writeBytes16(buf, t.Recipient)
	writeBytes16(buf, t.Sender)
	writeBytes16(buf, []byte(t.URI))

	return buf.Bytes(), nil
}

// DecodeGeneric parses a generic payload.
func DecodeGeneric(payload []byte) (*nftbridge.Transfer, error) {
	r := bytes.NewReader(payload)

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: empty generic payload", nftbridge.ErrDecode)
	}
	if version != genericVersion {
		return nil, fmt.Errorf("%w: generic payload version %d, want %d", nftbridge.ErrDecode, version, genericVersion)
	}

	var assetID ids.ID
	if _, err := io.ReadFull(r, assetID[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated asset id", nftbridge.ErrDecode)
	}

	t := &nftbridge.Transfer{AssetID: assetID}
	if t.HomeChainID, err = readUint64(r, "home chain id"); err != nil {
		return nil, err
	}
	if t.Nonce, err = readUint64(r, "nonce"); err != nil {
		return nil, err
	}

	flags, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated flags", nftbridge.ErrDecode)
	}
	t.Resident = flags&residentFlag != 0

	if t.HomeReference, err = readBytes16(r, "home reference"); err != nil {
		return nil, err
	}
	if t.Recipient, err = readBytes16(r, "recipient"); err != nil {
		return nil, err
	}
	if t.Sender, err = readBytes16(r, "sender"); err != nil {
		return nil, err
	}
	uri, err := readBytes16(r, "uri")
	if err != nil {
		return nil, err
	}
	t.URI = string(uri)

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in generic payload", nftbridge.ErrDecode, r.Len())
	}
	return t, nil
}
