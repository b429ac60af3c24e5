// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/api"
	"github.com/luxfi/nftbridge/bridge"
	"github.com/luxfi/nftbridge/config"
	"github.com/luxfi/nftbridge/ledger"
	"github.com/luxfi/nftbridge/metrics"
	"github.com/luxfi/nftbridge/registry"
	"github.com/luxfi/nftbridge/replay"
	"github.com/luxfi/nftbridge/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge node",
	Long:  `Start the bridge node: HTTP API, health check, and metrics server.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String(config.ConfigFileKey, "", "Path to the JSON configuration file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return err
	}
	if cfg.RelayEndpoint == "" {
		return fmt.Errorf("relay endpoint must be set")
	}

	logLevel, err := log.ToLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("error reading log level from config: %w", err)
	}
	logger := log.NewLogger(
		"nftbridge",
		*log.NewWrappedCore(
			logLevel,
			os.Stdout,
			log.JSON.ConsoleEncoder(),
		),
	)

	logger.Info("initializing bridge node")

	db, err := store.Open(cfg.DBDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	trust := cfg.TrustConfig()
	b, err := bridge.New(bridge.Config{
		Logger:   logger,
		DB:       db,
		Trust:    trust,
		Chains:   cfg.ChainTable(),
		LocalID:  cfg.LocalChainID,
		Verifier: nftbridge.NewDirectVerifier(trust.Relay),
		Minter:   ledger.New(db),
		Relay:    bridge.NewHTTPRelayClient(logger, cfg.RelayEndpoint),
		Registry: registry.New(db, int(cfg.OriginCacheSize)),
		Replay:   replay.New(db, logger),
	})
	if err != nil {
		return err
	}

	metrics.StartMetricsServer(logger, cfg.MetricsPort)

	mux := http.NewServeMux()
	api.RegisterHandlers(logger, mux, b, trust.Relay, cfg.RelayAPIKey)
	api.RegisterHealthCheck(mux, func(ctx context.Context) error {
		return db.View(func(*badger.Txn) error { return nil })
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	logger.Info("starting api server", log.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
