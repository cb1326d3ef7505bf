package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"compressednft/chainsol"
	"compressednft/config"
	"compressednft/solprogram"
)

func main() {
	fmt.Println("=== Compressed NFT Program Demo ===")

	// =====================================================
	// TEST CONFIGURATION - Edit these flags to enable/disable steps
	// =====================================================
	const (
		runCreateCollection = true // Create a collection NFT owned by the program PDA when COLLECTION_MINT is unset
		runCreateTree       = true // Allocate and create a depth 14 / buffer 64 tree
		runTreeInfo         = true // Read back the tree header
		runMint             = true // Mint into the collection (update authority must be the program PDA)
	)

	boot := zap.Must(zap.NewDevelopment())
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	payer, err := loadKeypair(cfg.PayerKeypair)
	if err != nil {
		logger.Fatal("failed to load payer keypair", zap.String("path", cfg.PayerKeypair), zap.Error(err))
	}

	ctx := context.Background()
	solChain, err := chainsol.NewSolChain(ctx, chainsol.Config{
		RPCURL:  cfg.RPCURL,
		Network: cfg.Network,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to init solana", zap.Error(err))
	}
	defer solChain.Close()

	client, err := solprogram.NewClient(solChain, cfg.ProgramID, logger)
	if err != nil {
		logger.Fatal("failed to create client", zap.Error(err))
	}

	fmt.Printf("Connected to %s (%s)\n", cfg.Network, cfg.RPCURL)
	fmt.Printf("Program ID: %s\n", client.ProgramID)
	fmt.Printf("Payer:      %s\n\n", payer.PublicKey())

	var collectionMint solana.PublicKey
	if cfg.CollectionMint != "" {
		collectionMint, err = solana.PublicKeyFromBase58(cfg.CollectionMint)
		if err != nil {
			logger.Fatal("invalid COLLECTION_MINT", zap.String("collection_mint", cfg.CollectionMint), zap.Error(err))
		}
	}

	if runCreateCollection && collectionMint.IsZero() {
		fmt.Println("--- Step 0: Create Collection ---")
		resp, err := client.CreateCollection(ctx, payer, solprogram.CreateCollectionParams{
			Name:   "Kombi",
			Symbol: "KMB",
			URI:    "https://raw.githubusercontent.com/687c/solana-nft-native-client/main/metadata.json",
		})
		if err != nil {
			logger.Fatal("create collection failed", zap.Error(err))
		}
		collectionMint = resp.CollectionMint
		fmt.Printf("Collection mint:  %s\n", resp.CollectionMint)
		fmt.Printf("Metadata:         %s\n", resp.Metadata)
		fmt.Printf("Master edition:   %s\n", resp.MasterEdition)
		fmt.Printf("Update authority: %s\n", resp.UpdateAuthority)
		fmt.Printf("Explorer:         %s\n\n", resp.ExplorerURL)

		waitForConfirmation(ctx, logger, client, cfg, resp.Signature)
	}

	var merkleTree solana.PublicKey

	if runCreateTree {
		fmt.Println("--- Step 1: Create Tree ---")
		resp, err := client.CreateTree(ctx, payer, solprogram.NewCreateTreeParams(14, 64, nil))
		if err != nil {
			logger.Fatal("create tree failed", zap.Error(err))
		}
		merkleTree = resp.MerkleTree
		fmt.Printf("Merkle tree:    %s\n", resp.MerkleTree)
		fmt.Printf("Tree authority: %s\n", resp.TreeAuthority)
		fmt.Printf("Account size:   %d bytes\n", resp.AccountSize)
		fmt.Printf("Explorer:       %s\n", resp.ExplorerURL)

		waitForConfirmation(ctx, logger, client, cfg, resp.Signature)
		printEvents(ctx, logger, client, resp.Signature)
	}

	if runTreeInfo && !merkleTree.IsZero() {
		fmt.Println("\n--- Step 2: Tree Info ---")
		info, err := client.GetTreeInfo(ctx, merkleTree)
		if err != nil {
			logger.Fatal("get tree info failed", zap.Stringer("merkle_tree", merkleTree), zap.Error(err))
		}
		printJSON(info)
	}

	if runMint {
		fmt.Println("\n--- Step 3: Mint Compressed NFT ---")
		if merkleTree.IsZero() || collectionMint.IsZero() {
			fmt.Println("Skipped: needs a tree from step 1 and a collection from step 0 or COLLECTION_MINT")
			return
		}

		preview, err := client.GetCollectionMetadata(ctx, collectionMint)
		if err != nil {
			logger.Fatal("get collection failed", zap.Stringer("collection_mint", collectionMint), zap.Error(err))
		}
		fmt.Printf("Collection: %s (%s) %s\n", preview.Name, preview.Symbol, preview.URI)

		resp, err := client.MintCompressedNft(ctx, payer, merkleTree, collectionMint)
		if err != nil {
			logger.Fatal("mint failed", zap.Error(err))
		}
		fmt.Printf("Leaf owner: %s\n", resp.LeafOwner)
		fmt.Printf("Explorer:   %s\n", resp.ExplorerURL)

		waitForConfirmation(ctx, logger, client, cfg, resp.Signature)
		printEvents(ctx, logger, client, resp.Signature)
	}
}

func waitForConfirmation(ctx context.Context, logger *zap.Logger, client *solprogram.Client, cfg *config.Config, signature string) {
	fmt.Println("Waiting for confirmation...")
	if err := client.WaitForConfirmation(ctx, signature, cfg.ConfirmTimeout); err != nil {
		logger.Fatal("confirmation failed", zap.String("signature", signature), zap.Error(err))
	}
}

func printEvents(ctx context.Context, logger *zap.Logger, client *solprogram.Client, signature string) {
	events, err := client.GetTransactionEvents(ctx, signature)
	if err != nil {
		logger.Fatal("failed to read events", zap.String("signature", signature), zap.Error(err))
	}
	for _, ev := range events {
		fmt.Printf("Event %s:\n", ev.Name)
		printJSON(ev.Data)
	}
}

// loadKeypair reads a solana-keygen JSON file, expanding a leading ~
func loadKeypair(path string) (solana.PrivateKey, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, rest)
	}
	return solana.PrivateKeyFromSolanaKeygenFile(path)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
