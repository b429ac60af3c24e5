// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"
	HelpKey       = "help"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey        = "log-level"
	DBDirKey           = "db-dir"
	APIPortKey         = "api-port"
	MetricsPortKey     = "metrics-port"
	RelayEndpointKey   = "relay-endpoint"
	LocalChainIDKey    = "local-chain-id"
	RelayAddressKey    = "relay-address"
	RelayAPIKeyKey     = "relay-api-key"
	TrustedSignerKey   = "trusted-signer"
	AdminAddressKey    = "admin-address"
	RequireAuthKey     = "require-auth"
	ChainsKey          = "chains"
	OriginCacheSizeKey = "origin-cache-size"
)
