// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/nftbridge"
)

// EVM-family layout: a fixed five-word ABI-style head followed by a
// dynamic section holding the metadata URI.
//
//	word 0: recipient, left-padded to 32 bytes
//	word 1: sender, left-padded to 32 bytes
//	word 2: byte offset of the dynamic section (always 5*32)
//	word 3: asset id
//	word 4: nonce, big-endian
//	tail:   32-byte URI length word, URI bytes, zero padding to the
//	        next word boundary
//
// Origin fields are not on the EVM wire; handlers resolve them from
// the origin registry, which requires the asset to have been attested
// before an EVM-family transfer can reference it.
const (
	wordLen      = 32
	evmHeadWords = 5
	evmHeadLen   = evmHeadWords * wordLen
)

func paddedLen(n int) int {
	return (n + wordLen - 1) / wordLen * wordLen
}

// putAddressWord writes a 20-byte address into the low bytes of the
// word at buf.
func putAddressWord(buf []byte, addr []byte) {
	copy(buf[wordLen-len(addr):wordLen], addr)
}

func putUint64Word(buf []byte, n uint64) {
	word := uint256.NewInt(n).Bytes32()
	copy(buf[:wordLen], word[:])
}

// EncodeEVM serializes the transfer into the EVM-family layout.
// Address fields of 32 bytes are normalized to their low 20 bytes.
func EncodeEVM(t *nftbridge.Transfer) ([]byte, error) {
	recipient, err := normalizeAddress(t.Recipient)
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	sender, err := normalizeAddress(t.Sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}

	uri := []byte(t.URI)
	buf := make([]byte, evmHeadLen+wordLen+paddedLen(len(uri)))

	putAddressWord(buf[0:], recipient)
	putAddressWord(buf[wordLen:], sender)
	putUint64Word(buf[2*wordLen:], evmHeadLen)
	copy(buf[3*wordLen:4*wordLen], t.AssetID[:])
	putUint64Word(buf[4*wordLen:], t.Nonce)

	putUint64Word(buf[evmHeadLen:], uint64(len(uri)))
	copy(buf[evmHeadLen+wordLen:], uri)

	return buf, nil
}

// uint64Word reads a big-endian integer word, rejecting values that do
// not fit 64 bits.
func uint64Word(buf []byte, what string) (uint64, error) {
	word := new(uint256.Int).SetBytes32(buf[:wordLen])
	if !word.IsUint64() {
		return 0, fmt.Errorf("%w: %s word exceeds 64 bits", nftbridge.ErrDecode, what)
	}
	return word.Uint64(), nil
}

// DecodeEVM parses an EVM-family payload. The offset and length words
// are bounds-checked against the actual buffer before any slice is
// taken; malformed input returns a decode error, never panics.
func DecodeEVM(payload []byte) (*nftbridge.Transfer, error) {
	if len(payload) < evmHeadLen+wordLen {
		return nil, fmt.Errorf("%w: evm payload length %d below minimum %d",
			nftbridge.ErrDecode, len(payload), evmHeadLen+wordLen)
	}

	offset, err := uint64Word(payload[2*wordLen:], "offset")
	if err != nil {
		return nil, err
	}
	if offset > uint64(len(payload))-wordLen {
		return nil, fmt.Errorf("%w: dynamic section offset %d outside payload of %d bytes",
			nftbridge.ErrDecode, offset, len(payload))
	}

	uriLen, err := uint64Word(payload[offset:], "length")
	if err != nil {
		return nil, err
	}
	if uriLen > uint64(len(payload))-offset-wordLen {
		return nil, fmt.Errorf("%w: uri length %d outside payload of %d bytes",
			nftbridge.ErrDecode, uriLen, len(payload))
	}

	nonce, err := uint64Word(payload[4*wordLen:], "nonce")
	if err != nil {
		return nil, err
	}

	var assetID ids.ID
	copy(assetID[:], payload[3*wordLen:4*wordLen])

	uriStart := offset + wordLen
	t := &nftbridge.Transfer{
		AssetID:   assetID,
		Recipient: append([]byte(nil), payload[12:wordLen]...),
		Sender:    append([]byte(nil), payload[wordLen+12:2*wordLen]...),
		URI:       string(payload[uriStart : uriStart+uriLen]),
		Nonce:     nonce,
	}
	return t, nil
}
