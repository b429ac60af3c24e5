// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/ids"
	"github.com/luxfi/nftbridge"
)

// Hub-native layout: a version byte followed by the concatenation of
// explicitly length-prefixed fields, no padding. This is the only
// family that carries the full descriptor, including the execution
// budget and call data, so first contact of a foreign-home asset
// travels hub-native (or generic).
const hubVersion = 1

const residentFlag = 0x01

func writeBytes16(buf *bytes.Buffer, b []byte) {
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(b)))
	buf.Write(length[:])
	buf.Write(b)
}

func writeUint64(buf *bytes.Buffer, n uint64) {
	var word [8]byte
	binary.BigEndian.PutUint64(word[:], n)
	buf.Write(word[:])
}

func readBytes16(r *bytes.Reader, what string) ([]byte, error) {
	var length [2]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated %s length", nftbridge.ErrDecode, what)
	}
	n := int(binary.BigEndian.Uint16(length[:]))
	if n > r.Len() {
		return nil, fmt.Errorf("%w: %s length %d exceeds remaining %d bytes",
			nftbridge.ErrDecode, what, n, r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: truncated %s", nftbridge.ErrDecode, what)
	}
	return b, nil
}

func readUint64(r *bytes.Reader, what string) (uint64, error) {
	var word [8]byte
	if _, err := io.ReadFull(r, word[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated %s", nftbridge.ErrDecode, what)
	}
	return binary.BigEndian.Uint64(word[:]), nil
}

// EncodeHub serializes the full transfer descriptor.
func EncodeHub(t *nftbridge.Transfer) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(hubVersion)
	buf.Write(t.AssetID[:])
	writeUint64(buf, t.HomeChainID)
	writeUint64(buf, t.Nonce)
	writeUint64(buf, t.GasLimit)

	var flags byte
	if t.Resident {
		flags |= residentFlag
	}
	buf.WriteByte(flags)

	writeBytes16(buf, t.HomeReference)
	writeBytes16(buf, t.Recipient)
	writeBytes16(buf, t.Sender)
	writeBytes16(buf, []byte(t.URI))
	writeBytes16(buf, t.CallData)

	return buf.Bytes(), nil
}

// DecodeHub parses a hub-native payload.
func DecodeHub(payload []byte) (*nftbridge.Transfer, error) {
	r := bytes.NewReader(payload)

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: empty hub payload", nftbridge.ErrDecode)
	}
	if version != hubVersion {
		return nil, fmt.Errorf("%w: hub payload version %d, want %d", nftbridge.ErrDecode, version, hubVersion)
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
	if t.GasLimit, err = readUint64(r, "gas limit"); err != nil {
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
	if t.CallData, err = readBytes16(r, "call data"); err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in hub payload", nftbridge.ErrDecode, r.Len())
	}
	return t, nil
}
