// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/nftbridge"
	"github.com/stretchr/testify/require"
)

func sequentialID() ids.ID {
	var id ids.ID
	for i := range id {
		id[i] = byte(i + 1)
	}
	return id
}

func addr(fill byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

// The fixed EVM example: five head words, one length word, one padded
// URI block.
func TestEncodeEVMLayout(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:     sequentialID(),
		HomeChainID: 101,
		Recipient:   addr(0xaa, 20),
		Sender:      addr(0xbb, 20),
		URI:         "https://example.com/a.json",
		Nonce:       7,
	}

	payload, err := Encode(nftbridge.DefaultChainTable(), 1, tr)
	require.NoError(t, err)
	require.Len(t, payload, 32*5+32+32)

	// recipient word: 12 zero bytes then the address
	require.Equal(t, make([]byte, 12), payload[0:12])
	require.Equal(t, tr.Recipient, payload[12:32])

	// offset word points just past the head
	require.Equal(t, make([]byte, 24), payload[64:88])
	require.Equal(t, uint64(160), binary.BigEndian.Uint64(payload[88:96]))

	decoded, err := DecodeEVM(payload)
	require.NoError(t, err)
	require.Equal(t, tr.Recipient, decoded.Recipient)
	require.Equal(t, tr.Sender, decoded.Sender)
	require.Equal(t, tr.URI, decoded.URI)
	require.Equal(t, tr.AssetID, decoded.AssetID)
	require.Equal(t, tr.Nonce, decoded.Nonce)
}

func TestEVMRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"short uri", "u"},
		{"empty uri", ""},
		{"word aligned uri", strings.Repeat("a", 64)},
		{"max uri", strings.Repeat("b", nftbridge.MaxURILen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &nftbridge.Transfer{
				AssetID:   sequentialID(),
				Recipient: addr(0x11, 20),
				Sender:    addr(0x22, 20),
				URI:       tt.uri,
				Nonce:     42,
			}
			payload, err := EncodeEVM(tr)
			require.NoError(t, err)

			decoded, err := DecodeEVM(payload)
			require.NoError(t, err)
			require.Equal(t, tr, decoded)
		})
	}
}

func TestEVMAddressNormalization(t *testing.T) {
	wide := addr(0x00, 32)
	copy(wide[12:], addr(0xcc, 20))

	tr := &nftbridge.Transfer{
		AssetID:   sequentialID(),
		Recipient: wide,
		Sender:    addr(0xdd, 20),
		URI:       "ipfs://x",
	}
	payload, err := EncodeEVM(tr)
	require.NoError(t, err)

	decoded, err := DecodeEVM(payload)
	require.NoError(t, err)
	require.Equal(t, addr(0xcc, 20), decoded.Recipient)

	tr.Recipient = addr(0xcc, 21)
	_, err = EncodeEVM(tr)
	require.ErrorIs(t, err, nftbridge.ErrDecode)
}

func TestDecodeEVMMalformed(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:   sequentialID(),
		Recipient: addr(0x11, 20),
		Sender:    addr(0x22, 20),
		URI:       "https://example.com/a.json",
	}
	valid, err := EncodeEVM(tr)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"undersized buffer", func(p []byte) []byte { return p[:100] }},
		{"truncated tail", func(p []byte) []byte { return p[:len(p)-32] }},
		{"offset upper bytes set", func(p []byte) []byte {
			p[64] = 0x01
			return p
		}},
		{"offset past buffer", func(p []byte) []byte {
			binary.BigEndian.PutUint64(p[88:96], uint64(len(p)))
			return p
		}},
		{"length past buffer", func(p []byte) []byte {
			binary.BigEndian.PutUint64(p[160+24:160+32], 1<<20)
			return p
		}},
		{"length upper bytes set", func(p []byte) []byte {
			p[160] = 0xff
			return p
		}},
		{"nonce exceeds 64 bits", func(p []byte) []byte {
			p[128] = 0x01
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := tt.mutate(append([]byte(nil), valid...))
			_, err := DecodeEVM(payload)
			require.ErrorIs(t, err, nftbridge.ErrDecode)
		})
	}
}

func TestHubRoundTrip(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:       sequentialID(),
		HomeChainID:   nftbridge.HubChainID,
		HomeReference: addr(0x33, 32),
		Recipient:     addr(0x44, 32),
		Sender:        addr(0x55, 32),
		URI:           "https://example.com/a.json",
		Nonce:         9000,
		Resident:      true,
		GasLimit:      250_000,
		CallData:      []byte{0x01, 0x02, 0x03},
	}

	payload, err := EncodeHub(tr)
	require.NoError(t, err)

	decoded, err := DecodeHub(payload)
	require.NoError(t, err)
	require.Equal(t, tr, decoded)
}

func TestDecodeHubMalformed(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:   sequentialID(),
		Recipient: addr(0x44, 20),
		Sender:    addr(0x55, 20),
		URI:       "u",
	}
	valid, err := EncodeHub(tr)
	require.NoError(t, err)

	_, err = DecodeHub(nil)
	require.ErrorIs(t, err, nftbridge.ErrDecode)

	_, err = DecodeHub(valid[:40])
	require.ErrorIs(t, err, nftbridge.ErrDecode)

	bad := append([]byte(nil), valid...)
	bad[0] = 0x7f
	_, err = DecodeHub(bad)
	require.ErrorIs(t, err, nftbridge.ErrDecode)

	_, err = DecodeHub(append(valid, 0x00))
	require.ErrorIs(t, err, nftbridge.ErrDecode)
}

func TestGenericRoundTrip(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:       sequentialID(),
		HomeChainID:   1,
		HomeReference: addr(0x66, 20),
		Recipient:     addr(0x77, 20),
		Sender:        addr(0x88, 32),
		URI:           "ar://abcdef",
		Nonce:         1,
	}

	payload, err := EncodeGeneric(tr)
	require.NoError(t, err)

	decoded, err := DecodeGeneric(payload)
	require.NoError(t, err)
	require.Equal(t, tr, decoded)
}

func TestEncodeBitcoin(t *testing.T) {
	tr := &nftbridge.Transfer{
		AssetID:     sequentialID(),
		HomeChainID: nftbridge.HubChainID,
		Recipient:   addr(0x99, 20),
		URI:         "u.json",
	}

	payload, err := EncodeBitcoin(tr)
	require.NoError(t, err)
	require.Equal(t, byte(0x6a), payload[0])
	require.Equal(t, int(payload[1]), len(payload)-2)

	summary := string(payload[2:])
	require.True(t, strings.HasPrefix(summary, "NFT:"))
	require.True(t, strings.HasSuffix(summary, ":101:SOL"))
	require.Contains(t, summary, ":u.json:")

	tr.HomeChainID = 1
	payload, err = EncodeBitcoin(tr)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(payload[2:]), ":1:EXT"))

	tr.URI = strings.Repeat("a", nftbridge.MaxURILen)
	_, err = EncodeBitcoin(tr)
	require.ErrorIs(t, err, nftbridge.ErrDecode)
}

func TestDispatch(t *testing.T) {
	table := nftbridge.DefaultChainTable()
	tr := &nftbridge.Transfer{
		AssetID:   sequentialID(),
		Recipient: addr(0x11, 20),
		Sender:    addr(0x22, 20),
		URI:       "u",
		Nonce:     3,
	}

	// unknown chain
	_, err := Encode(table, 999_999, tr)
	require.ErrorIs(t, err, nftbridge.ErrUnsupportedChain)
	_, err = Decode(table, 999_999, nil)
	require.ErrorIs(t, err, nftbridge.ErrUnsupportedChain)

	// bitcoin has no decoder
	_, err = Decode(table, nftbridge.BitcoinChainID, nil)
	require.ErrorIs(t, err, nftbridge.ErrUnsupportedChain)

	// hub payload round trips through the dispatcher
	payload, err := Encode(table, nftbridge.HubChainID, tr)
	require.NoError(t, err)
	decoded, err := Decode(table, nftbridge.HubChainID, payload)
	require.NoError(t, err)
	require.True(t, bytes.Equal(tr.AssetID[:], decoded.AssetID[:]))
	require.Equal(t, tr.Recipient, decoded.Recipient)
}
