package chainsol

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
)

// PartialSign adds signatures for the given keys and keeps any already present.
// Each key must be a required signer of the message.
func PartialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	if len(keys) == 0 {
		return nil
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	ensureSignatureSlots(tx)

	signers := requiredSigners(tx)
	for _, key := range keys {
		idx := indexOf(signers, key.PublicKey())
		if idx < 0 {
			return fmt.Errorf("%s is not a required signer", key.PublicKey())
		}
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("failed to sign: %w", err)
		}
		tx.Signatures[idx] = sig
	}
	return nil
}

// VerifySignatures checks that every required signer has a valid signature
func VerifySignatures(tx *solana.Transaction) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	signers := requiredSigners(tx)
	if len(tx.Signatures) != len(signers) {
		return fmt.Errorf("%w: %d of %d signatures", ErrNotSigned, len(tx.Signatures), len(signers))
	}
	for i, signer := range signers {
		if !tx.Signatures[i].Verify(signer, msg) {
			return fmt.Errorf("%w: missing or invalid signature for %s", ErrNotSigned, signer)
		}
	}
	return nil
}

// requiredSigners - the first NumRequiredSignatures account keys, in signature order
func requiredSigners(tx *solana.Transaction) []solana.PublicKey {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		n = len(tx.Message.AccountKeys)
	}
	return tx.Message.AccountKeys[:n]
}

func indexOf(keys []solana.PublicKey, key solana.PublicKey) int {
	for i, k := range keys {
		if k.Equals(key) {
			return i
		}
	}
	return -1
}

func ensureSignatureSlots(tx *solana.Transaction) {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) >= required {
		return
	}
	sigs := make([]solana.Signature, required)
	copy(sigs, tx.Signatures)
	tx.Signatures = sigs
}

// HandleSignTransaction - Function for CLIENT SIDE
// Private key will NEVER SEND to backend side
// Reference/example and TESTING PURPOSE ONLY
func (p *SolChain) HandleSignTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnsignedTransaction string `json:"unsigned_transaction"`
		PrivateKey          string `json:"private_key"` // BASE58 encoded private key
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tx, err := DecodeTransaction(req.UnsignedTransaction)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Parse private key - WARNING: INSECURE!
	privateKey, err := solana.PrivateKeyFromBase58(req.PrivateKey)
	if err != nil {
		respondError(w, fmt.Sprintf("invalid private key: %v", err), http.StatusBadRequest)
		return
	}
	if err := PartialSign(tx, privateKey); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	signed, err := EncodeTransaction(tx)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]string{
		"signed_transaction": signed,
		"warning":            "TESTING ONLY - Never send private keys in production!",
	}, http.StatusOK)
}
