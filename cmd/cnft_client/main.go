package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"

	"compressednft/chainsol"
	"compressednft/config"
	"compressednft/solprogram"
)

// Drives a running cnft_api the way a wallet would: request unsigned, sign locally, send.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	payer, err := solana.PrivateKeyFromSolanaKeygenFile(expandHome(cfg.PayerKeypair))
	if err != nil {
		log.Fatalf("Failed to load payer keypair: %v", err)
	}

	fmt.Println("#============ CREATE TREE START ============#")
	tree, err := doPost[APIResponse[solprogram.CreateTreeResponse]](cfg.APIURL+"/api/v1/cnft/tree", solprogram.CreateTreeRequest{
		Payer:         payer.PublicKey().String(),
		MaxDepth:      14,
		MaxBufferSize: 64,
	})
	if err != nil {
		log.Fatal(err)
	}
	if !tree.Success {
		log.Fatal("Failed to create tree: ", tree.Message)
	}
	send(cfg.APIURL, tree.Data.TransactionID, tree.Data.UnsignedTransaction, payer)
	fmt.Println("Merkle tree:", tree.Data.MerkleTree)
	fmt.Println("#============ CREATE TREE DONE ============#")

	collectionMint := cfg.CollectionMint
	if collectionMint == "" {
		fmt.Println("#============ CREATE COLLECTION START ============#")
		collection, err := doPost[APIResponse[solprogram.CollectionResponse]](cfg.APIURL+"/api/v1/cnft/collection", solprogram.CreateCollectionRequest{
			Payer:  payer.PublicKey().String(),
			Name:   "Kombi",
			Symbol: "KMB",
			URI:    "https://raw.githubusercontent.com/687c/solana-nft-native-client/main/metadata.json",
		})
		if err != nil {
			log.Fatal(err)
		}
		if !collection.Success {
			log.Fatal("Failed to create collection: ", collection.Message)
		}
		send(cfg.APIURL, collection.Data.TransactionID, collection.Data.UnsignedTransaction, payer)
		collectionMint = collection.Data.CollectionMint.String()
		fmt.Println("Collection mint:", collectionMint)
		fmt.Println("#============ CREATE COLLECTION DONE ============#")
	}

	fmt.Println("#============ MINT START ============#")
	mint, err := doPost[APIResponse[solprogram.MintResponse]](cfg.APIURL+"/api/v1/cnft/mint", solprogram.MintRequest{
		Payer:          payer.PublicKey().String(),
		MerkleTree:     tree.Data.MerkleTree.String(),
		CollectionMint: collectionMint,
	})
	if err != nil {
		log.Fatal(err)
	}
	if !mint.Success {
		log.Fatal("Failed to mint: ", mint.Message)
	}
	send(cfg.APIURL, mint.Data.TransactionID, mint.Data.UnsignedTransaction, payer)
	fmt.Println("#============ MINT DONE ============#")
}

func send(apiURL, transactionID, unsignedTx string, payer solana.PrivateKey) {
	signedTx, err := clientSign(unsignedTx, payer)
	if err != nil {
		log.Fatal(err)
	}
	result, err := doPost[chainsol.TransactionResult](apiURL+"/api/v1/transaction/send", chainsol.SignedTransactionRequest{
		TransactionID:     transactionID,
		SignedTransaction: signedTx,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%+v\n", *result)

	if err := waitConfirmed(apiURL, result.Signature); err != nil {
		log.Fatal(err)
	}
}

// waitConfirmed polls the status endpoint until the transaction lands
func waitConfirmed(apiURL, signature string) error {
	statusURL := apiURL + "/api/v1/transaction/status?signature=" + url.QueryEscape(signature)
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 30)
	return backoff.Retry(func() error {
		status, err := doGet[chainsol.TransactionStatusResponse](statusURL)
		if err != nil {
			return err
		}
		switch status.Status {
		case chainsol.StatusConfirmed:
			fmt.Println("Confirmed:", status.ExplorerURL)
			return nil
		case chainsol.StatusFailed:
			msg := "transaction failed"
			if status.Error != nil {
				msg += ": " + *status.Error
			}
			return backoff.Permanent(errors.New(msg))
		default:
			return fmt.Errorf("transaction %s", status.Status)
		}
	}, b)
}
