package main

import (
	"github.com/gagliardetto/solana-go"

	"compressednft/chainsol"
)

// ------------------------------ CLIENT SIDE ------------------------------ //
func clientSign(unsignedTx string, key solana.PrivateKey) (string, error) {
	tx, err := chainsol.DecodeTransaction(unsignedTx)
	if err != nil {
		return "", err
	}
	if err := chainsol.PartialSign(tx, key); err != nil {
		return "", err
	}
	return chainsol.EncodeTransaction(tx)
}
