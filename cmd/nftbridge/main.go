// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/crypto"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/nftbridge"
	"github.com/luxfi/nftbridge/codec"
	"github.com/luxfi/nftbridge/registry"
	"github.com/luxfi/nftbridge/replay"
	"github.com/luxfi/nftbridge/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nftbridge",
	Short: "Cross-chain NFT transfer protocol CLI",
	Long: `nftbridge provides tools for encoding, decoding, signing, and
inspecting cross-chain NFT transfer payloads.`,
	Version: fmt.Sprintf("%s (built %s)", version, buildDate),
}

func init() {
	rootCmd.AddCommand(assetIDCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(originCmd)
	rootCmd.AddCommand(pruneCmd)
}

var assetIDCmd = &cobra.Command{
	Use:   "asset-id",
	Short: "Derive the canonical asset identifier",
	Long:  `Derive the canonical asset identifier from the home chain and home reference.`,
	Run: func(cmd *cobra.Command, args []string) {
		homeChain, _ := cmd.Flags().GetUint64("home-chain")
		homeRef, _ := cmd.Flags().GetString("home-ref")

		ref, err := parseHexOrText(homeRef)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid home reference: %v\n", err)
			os.Exit(1)
		}

		assetID := nftbridge.NewAssetID(homeChain, ref)
		fmt.Printf("%s\n", assetID.Hex())
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a transfer for a destination chain",
	Long:  `Encode a transfer into the wire layout of the destination chain's family.`,
	Run: func(cmd *cobra.Command, args []string) {
		destChain, _ := cmd.Flags().GetUint64("dest")
		homeChain, _ := cmd.Flags().GetUint64("home-chain")
		homeRef, _ := cmd.Flags().GetString("home-ref")
		recipient, _ := cmd.Flags().GetString("recipient")
		sender, _ := cmd.Flags().GetString("sender")
		uri, _ := cmd.Flags().GetString("uri")
		nonce, _ := cmd.Flags().GetUint64("nonce")

		ref, err := parseHexOrText(homeRef)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid home reference: %v\n", err)
			os.Exit(1)
		}
		recipientBytes, err := parseHex(recipient)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid recipient: %v\n", err)
			os.Exit(1)
		}
		senderBytes, err := parseHex(sender)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid sender: %v\n", err)
			os.Exit(1)
		}

		transfer := &nftbridge.Transfer{
			AssetID:       nftbridge.NewAssetID(homeChain, ref),
			HomeChainID:   homeChain,
			HomeReference: ref,
			Recipient:     recipientBytes,
			Sender:        senderBytes,
			URI:           uri,
			Nonce:         nonce,
			Resident:      homeChain == destChain,
		}

		payload, err := codec.Encode(nftbridge.DefaultChainTable(), destChain, transfer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encoding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%x\n", payload)
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a transfer payload",
	Long:  `Decode a hex payload using the wire layout of the source chain's family.`,
	Run: func(cmd *cobra.Command, args []string) {
		sourceChain, _ := cmd.Flags().GetUint64("source")
		payloadHex, _ := cmd.Flags().GetString("payload")

		payload, err := parseHex(payloadHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid payload hex: %v\n", err)
			os.Exit(1)
		}

		transfer, err := codec.Decode(nftbridge.DefaultChainTable(), sourceChain, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Decoding failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Transfer decoded:\n")
		fmt.Printf("  Asset ID: %s\n", transfer.AssetID.Hex())
		fmt.Printf("  Home Chain: %d\n", transfer.HomeChainID)
		fmt.Printf("  Home Reference: %x\n", transfer.HomeReference)
		fmt.Printf("  Recipient: %x\n", transfer.Recipient)
		fmt.Printf("  Sender: %x\n", transfer.Sender)
		fmt.Printf("  URI: %s\n", transfer.URI)
		fmt.Printf("  Nonce: %d\n", transfer.Nonce)
		fmt.Printf("  Resident: %t\n", transfer.Resident)
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a transfer payload",
	Long:  `Sign the keccak digest of a payload with a secp256k1 private key.`,
	Run: func(cmd *cobra.Command, args []string) {
		payloadHex, _ := cmd.Flags().GetString("payload")
		keyHex, _ := cmd.Flags().GetString("key")

		payload, err := parseHex(payloadHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid payload hex: %v\n", err)
			os.Exit(1)
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid private key: %v\n", err)
			os.Exit(1)
		}

		signer := nftbridge.NewSigner(key)
		sig, v, err := signer.Sign(common.Hash(crypto.Keccak256Hash(payload)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Signing failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Signer: %s\n", signer.Address())
		fmt.Printf("Signature: %x%02x\n", sig, v)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a payload signature",
	Long:  `Recover the signer of a payload signature and check it against the expected address.`,
	Run: func(cmd *cobra.Command, args []string) {
		payloadHex, _ := cmd.Flags().GetString("payload")
		signatureHex, _ := cmd.Flags().GetString("signature")
		signerHex, _ := cmd.Flags().GetString("signer")

		payload, err := parseHex(payloadHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid payload hex: %v\n", err)
			os.Exit(1)
		}
		sigBytes, err := parseHex(signatureHex)
		if err != nil || len(sigBytes) != nftbridge.SignatureLen+1 {
			fmt.Fprintf(os.Stderr, "Invalid signature: expected %d hex bytes\n", nftbridge.SignatureLen+1)
			os.Exit(1)
		}

		var sig [nftbridge.SignatureLen]byte
		copy(sig[:], sigBytes)
		v := sigBytes[nftbridge.SignatureLen]

		recovered, err := nftbridge.RecoverSigner(common.Hash(crypto.Keccak256Hash(payload)), sig, v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recovery failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Recovered signer: %s\n", recovered)

		if signerHex != "" {
			if recovered != common.HexToAddress(signerHex) {
				fmt.Fprintln(os.Stderr, "Signer mismatch")
				os.Exit(1)
			}
			fmt.Println("Signature valid")
		}
	},
}

var originCmd = &cobra.Command{
	Use:   "origin",
	Short: "Inspect an asset's origin record",
	Long:  `Read an asset's origin record from the bridge database.`,
	Run: func(cmd *cobra.Command, args []string) {
		dbDir, _ := cmd.Flags().GetString("db-dir")
		assetIDHex, _ := cmd.Flags().GetString("asset-id")

		assetID, err := parseAssetID(assetIDHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid asset id: %v\n", err)
			os.Exit(1)
		}

		db, err := store.Open(dbDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		rec, err := registry.New(db, 0).Lookup(assetID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Origin record:\n")
		fmt.Printf("  Asset ID: %s\n", rec.AssetID.Hex())
		fmt.Printf("  Home Chain: %d\n", rec.HomeChainID)
		fmt.Printf("  Home Reference: %x\n", rec.HomeReference)
		fmt.Printf("  URI: %s\n", rec.URI)
		fmt.Printf("  Resident: %t\n", rec.Resident)
		fmt.Printf("  Created At: %d\n", rec.CreatedAt)
		fmt.Printf("  Updated At: %d\n", rec.UpdatedAt)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old replay markers",
	Long:  `Delete replay markers consumed before the cutoff timestamp.`,
	Run: func(cmd *cobra.Command, args []string) {
		dbDir, _ := cmd.Flags().GetString("db-dir")
		cutoff, _ := cmd.Flags().GetUint64("cutoff")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		db, err := store.Open(dbDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		pruned, err := replay.New(db, log.NewNoOpLogger()).PruneBefore(cutoff, dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Prune failed: %v\n", err)
			os.Exit(1)
		}
		if dryRun {
			fmt.Printf("Would prune %d markers\n", pruned)
		} else {
			fmt.Printf("Pruned %d markers\n", pruned)
		}
	},
}

func init() {
	// Asset id command flags
	assetIDCmd.Flags().Uint64("home-chain", 0, "Home chain ID")
	assetIDCmd.Flags().String("home-ref", "", "Home reference (hex with 0x prefix, or text)")
	assetIDCmd.MarkFlagRequired("home-chain")
	assetIDCmd.MarkFlagRequired("home-ref")

	// Encode command flags
	encodeCmd.Flags().Uint64P("dest", "d", 0, "Destination chain ID")
	encodeCmd.Flags().Uint64("home-chain", 0, "Home chain ID")
	encodeCmd.Flags().String("home-ref", "", "Home reference (hex with 0x prefix, or text)")
	encodeCmd.Flags().StringP("recipient", "r", "", "Recipient address (hex)")
	encodeCmd.Flags().StringP("sender", "s", "", "Sender address (hex)")
	encodeCmd.Flags().StringP("uri", "u", "", "Metadata URI")
	encodeCmd.Flags().Uint64P("nonce", "n", 0, "Transfer nonce")
	encodeCmd.MarkFlagRequired("dest")
	encodeCmd.MarkFlagRequired("home-chain")
	encodeCmd.MarkFlagRequired("home-ref")
	encodeCmd.MarkFlagRequired("recipient")

	// Decode command flags
	decodeCmd.Flags().Uint64P("source", "s", 0, "Source chain ID")
	decodeCmd.Flags().StringP("payload", "p", "", "Payload (hex)")
	decodeCmd.MarkFlagRequired("source")
	decodeCmd.MarkFlagRequired("payload")

	// Sign command flags
	signCmd.Flags().StringP("payload", "p", "", "Payload (hex)")
	signCmd.Flags().StringP("key", "k", "", "Private key (hex)")
	signCmd.MarkFlagRequired("payload")
	signCmd.MarkFlagRequired("key")

	// Verify command flags
	verifyCmd.Flags().StringP("payload", "p", "", "Payload (hex)")
	verifyCmd.Flags().StringP("signature", "s", "", "Signature with recovery id (65 hex bytes)")
	verifyCmd.Flags().String("signer", "", "Expected signer address (hex)")
	verifyCmd.MarkFlagRequired("payload")
	verifyCmd.MarkFlagRequired("signature")

	// Origin command flags
	originCmd.Flags().String("db-dir", "data", "Bridge database directory")
	originCmd.Flags().String("asset-id", "", "Asset ID (hex)")
	originCmd.MarkFlagRequired("asset-id")

	// Prune command flags
	pruneCmd.Flags().String("db-dir", "data", "Bridge database directory")
	pruneCmd.Flags().Uint64("cutoff", 0, "Delete markers consumed before this unix timestamp")
	pruneCmd.Flags().Bool("dry-run", false, "Count markers without deleting")
	pruneCmd.MarkFlagRequired("cutoff")
}

// Helper functions
func parseHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func parseHexOrText(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		return hex.DecodeString(s[2:])
	}
	return []byte(s), nil
}

func parseAssetID(s string) (ids.ID, error) {
	b, err := parseHex(s)
	if err != nil {
		return ids.ID{}, err
	}
	if len(b) != len(ids.ID{}) {
		return ids.ID{}, fmt.Errorf("expected %d bytes, got %d", len(ids.ID{}), len(b))
	}
	var id ids.ID
	copy(id[:], b)
	return id, nil
}
