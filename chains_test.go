// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package nftbridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainTableFamily(t *testing.T) {
	require := require.New(t)
	table := DefaultChainTable()

	family, ok := table.Family(1)
	require.True(ok)
	require.Equal(FamilyEVM, family)

	family, ok = table.Family(HubChainID)
	require.True(ok)
	require.Equal(FamilyHub, family)

	family, ok = table.Family(BitcoinChainID)
	require.True(ok)
	require.Equal(FamilyBitcoin, family)

	// An unregistered chain has no family and is not supported.
	family, ok = table.Family(4242)
	require.False(ok)
	require.Equal(FamilyUnknown, family)
	require.False(table.Supported(4242))

	table.Register(4242, FamilyGeneric)
	family, ok = table.Family(4242)
	require.True(ok)
	require.Equal(FamilyGeneric, family)
	require.True(table.Supported(4242))
}
