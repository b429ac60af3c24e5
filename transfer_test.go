// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssetID(t *testing.T) {
	ref := []byte{0xde, 0xad, 0xbe, 0xef}

	id := NewAssetID(HubChainID, ref)
	require.Equal(t, id, NewAssetID(HubChainID, ref), "derivation must be deterministic")
	require.NotEqual(t, id, NewAssetID(HubChainID+1, ref))
	require.NotEqual(t, id, NewAssetID(HubChainID, []byte{0xde, 0xad}))
}

func TestTransferVerify(t *testing.T) {
	valid := Transfer{
		Recipient: make([]byte, 20),
		Sender:    make([]byte, 32),
		URI:       "https://example.com/a.json",
	}
	require.NoError(t, valid.Verify())

	tests := []struct {
		name   string
		mutate func(*Transfer)
	}{
		{"recipient too short", func(tr *Transfer) { tr.Recipient = make([]byte, 19) }},
		{"recipient empty", func(tr *Transfer) { tr.Recipient = nil }},
		{"sender odd length", func(tr *Transfer) { tr.Sender = make([]byte, 21) }},
		{"uri too long", func(tr *Transfer) { tr.URI = strings.Repeat("a", MaxURILen+1) }},
		{"reference too long", func(tr *Transfer) { tr.HomeReference = make([]byte, MaxReferenceLen+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			require.ErrorIs(t, tr.Verify(), ErrDecode)
		})
	}
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeReplayDetected, CodeOf(ErrReplayDetected))
	require.Equal(t, CodeUnknown, CodeOf(assertionError{}))

	structured := NewError(ErrOriginConflict)
	require.Equal(t, CodeOriginConflict, structured.Code)
}

type assertionError struct{}

func (assertionError) Error() string { return "boom" }
