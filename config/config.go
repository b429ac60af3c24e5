// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the bridge node configuration and its viper
// plumbing.
package config

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/nftbridge"
)

const (
	defaultLogLevel        = "info"
	defaultAPIPort         = 8080
	defaultMetricsPort     = 9090
	defaultDBDir           = "data"
	DefaultOriginCacheSize = 1024
)

// ChainConfig declares one remote chain the bridge may exchange
// transfers with.
type ChainConfig struct {
	ChainID uint64 `mapstructure:"chain-id" json:"chain-id"`
	Family  string `mapstructure:"family" json:"family"`
}

// Config is the top-level bridge node configuration.
type Config struct {
	LogLevel        string        `mapstructure:"log-level" json:"log-level"`
	DBDir           string        `mapstructure:"db-dir" json:"db-dir"`
	APIPort         uint16        `mapstructure:"api-port" json:"api-port"`
	MetricsPort     uint16        `mapstructure:"metrics-port" json:"metrics-port"`
	RelayEndpoint   string        `mapstructure:"relay-endpoint" json:"relay-endpoint"`
	LocalChainID    uint64        `mapstructure:"local-chain-id" json:"local-chain-id"`
	RelayAddress    string        `mapstructure:"relay-address" json:"relay-address"`
	RelayAPIKey     string        `mapstructure:"relay-api-key" json:"relay-api-key"`
	TrustedSigner   string        `mapstructure:"trusted-signer" json:"trusted-signer"`
	AdminAddress    string        `mapstructure:"admin-address" json:"admin-address"`
	RequireAuth     bool          `mapstructure:"require-auth" json:"require-auth"`
	Chains          []ChainConfig `mapstructure:"chains" json:"chains"`
	OriginCacheSize uint64        `mapstructure:"origin-cache-size" json:"origin-cache-size"`
}

func (c *Config) Validate() error {
	if c.LocalChainID == 0 {
		return fmt.Errorf("local chain id must be set")
	}
	if !common.IsHexAddress(c.RelayAddress) {
		return fmt.Errorf("invalid relay address %q", c.RelayAddress)
	}
	if c.TrustedSigner != "" && !common.IsHexAddress(c.TrustedSigner) {
		return fmt.Errorf("invalid trusted signer address %q", c.TrustedSigner)
	}
	if c.AdminAddress != "" && !common.IsHexAddress(c.AdminAddress) {
		return fmt.Errorf("invalid admin address %q", c.AdminAddress)
	}
	if c.RequireAuth && c.TrustedSigner == "" {
		return fmt.Errorf("trusted signer must be set when authentication is required")
	}
	// The HTTP inbound endpoint asserts relay identity, so at least
	// one of channel or signer authentication must back it.
	if !c.RequireAuth && c.RelayAPIKey == "" {
		return fmt.Errorf("relay api key must be set when signer authentication is disabled")
	}
	for _, chain := range c.Chains {
		if _, ok := nftbridge.FamilyFromString(chain.Family); !ok {
			return fmt.Errorf("chain %d has unknown family %q", chain.ChainID, chain.Family)
		}
	}
	return nil
}

// TrustConfig converts the configured authorities into the bridge's
// trust anchors.
func (c *Config) TrustConfig() nftbridge.TrustConfig {
	trust := nftbridge.TrustConfig{
		Relay:       common.HexToAddress(c.RelayAddress),
		RequireAuth: c.RequireAuth,
	}
	if c.TrustedSigner != "" {
		trust.TrustedSigner = common.HexToAddress(c.TrustedSigner)
	}
	if c.AdminAddress != "" {
		trust.Admin = common.HexToAddress(c.AdminAddress)
	}
	return trust
}

// ChainTable builds the routing table from the configured chains,
// falling back to the default table when none are configured.
func (c *Config) ChainTable() *nftbridge.ChainTable {
	if len(c.Chains) == 0 {
		return nftbridge.DefaultChainTable()
	}
	table := nftbridge.NewChainTable()
	for _, chain := range c.Chains {
		family, _ := nftbridge.FamilyFromString(chain.Family)
		table.Register(chain.ChainID, family)
	}
	return table
}
