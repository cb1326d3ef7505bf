package chainsol

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotSigned           = errors.New("transaction is not fully signed")
	ErrConfirmationTimeout = errors.New("timeout waiting for confirmation")
	ErrInvalidSignature    = errors.New("invalid signature")
	errNotConfirmed        = errors.New("not confirmed yet")
)

// NewTransactionID - id used to track a transaction from creation to confirmation
func NewTransactionID() string {
	return "txn_" + uuid.NewString()
}

// NewTransaction builds a transaction on the latest blockhash without signing it
func (p *SolChain) NewTransaction(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
) (*solana.Transaction, error) {
	recent, err := p.http.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// BuildUnsignedTransaction - Step 1: build the transaction the client will sign.
// cosigners are server-held keys (e.g. a fresh tree account) that sign before hand-off.
func (p *SolChain) BuildUnsignedTransaction(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	cosigners ...solana.PrivateKey,
) (*CreateTransactionResponse, error) {
	tx, err := p.NewTransaction(ctx, instructions, payer)
	if err != nil {
		return nil, err
	}
	if err := PartialSign(tx, cosigners...); err != nil {
		return nil, err
	}
	encoded, err := EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	return &CreateTransactionResponse{
		TransactionID:       NewTransactionID(),
		UnsignedTransaction: encoded,
		RecentBlockhash:     tx.Message.RecentBlockhash.String(),
	}, nil
}

// EncodeTransaction serializes to base64, keeping empty slots for missing signatures
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	ensureSignatureSlots(tx)
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}

func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return tx, nil
}

// SendSignedTransaction - Step 2: send the client-signed transaction to the cluster
func (p *SolChain) SendSignedTransaction(ctx context.Context, req SignedTransactionRequest) (*TransactionResult, error) {
	tx, err := DecodeTransaction(req.SignedTransaction)
	if err != nil {
		return nil, err
	}
	if err := VerifySignatures(tx); err != nil {
		return nil, err
	}

	sig, status, err := p.SendTransaction(ctx, tx)
	result := &TransactionResult{
		TransactionID: req.TransactionID,
		Success:       err == nil,
	}
	if err != nil {
		result.Status = StatusFailed
		result.Message = fmt.Sprintf("Failed to send transaction: %v", err)
		if req.TransactionID != "" {
			p.updateHistoryQuietly(ctx, req.TransactionID, "", StatusFailed, err.Error())
		}
		return result, err
	}

	result.Signature = sig.String()
	result.Status = status
	result.Message = "Transaction sent successfully"
	result.ExplorerURL = p.GetExplorerURL(sig.String())
	if req.TransactionID != "" {
		p.updateHistoryQuietly(ctx, req.TransactionID, sig.String(), status, "")
	}
	return result, nil
}

// SendTransaction submits a fully signed transaction.
// With a websocket it waits for confirmation, otherwise it returns once the node accepted it.
func (p *SolChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if p.ws != nil {
		sig, err := confirm.SendAndConfirmTransaction(ctx, p.http, p.ws, tx)
		if err != nil {
			return solana.Signature{}, "", fmt.Errorf("failed to send and confirm: %w", err)
		}
		return sig, StatusConfirmed, nil
	}

	sig, err := p.http.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, "", fmt.Errorf("failed to send: %w", err)
	}
	p.logger.Debug("transaction sent", zap.Stringer("signature", sig))
	return sig, StatusPending, nil
}

// WaitForConfirmation polls signature status with exponential backoff until the
// transaction is confirmed, fails, or the timeout elapses.
func (p *SolChain) WaitForConfirmation(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.pollInterval()
	policy.MaxInterval = 4 * time.Second
	policy.MaxElapsedTime = timeout

	op := func() error {
		out, err := p.http.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			p.logger.Debug("signature status lookup failed", zap.Stringer("signature", sig), zap.Error(err))
			return err
		}
		if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
			return errNotConfirmed
		}
		status := out.Value[0]
		if status.Err != nil {
			return backoff.Permanent(fmt.Errorf("transaction failed: %v", status.Err))
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
		return errNotConfirmed
	}

	err := backoff.Retry(op, backoff.WithContext(policy, ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotConfirmed) || ctx.Err() != nil {
		return fmt.Errorf("%w after %s", ErrConfirmationTimeout, timeout)
	}
	return err
}

// GetTransactionStatus - Check transaction status
func (p *SolChain) GetTransactionStatus(ctx context.Context, signature string) (*TransactionStatusResponse, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := p.getTransaction(ctx, sig)
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	response := &TransactionStatusResponse{
		Signature:   signature,
		ExplorerURL: p.GetExplorerURL(signature),
	}
	if err != nil || result == nil {
		response.Status = StatusNotFound
		return response, nil
	}

	if result.Meta != nil {
		if result.Meta.Err != nil {
			errMsg := fmt.Sprintf("%v", result.Meta.Err)
			response.Status = StatusFailed
			response.Error = &errMsg
		} else {
			response.Status = StatusConfirmed
		}
		response.Fee = result.Meta.Fee
	}
	response.Slot = result.Slot
	if result.BlockTime != nil {
		blockTime := int64(*result.BlockTime)
		response.BlockTime = &blockTime
	}
	currentSlot, err := p.http.GetSlot(ctx, rpc.CommitmentFinalized)
	if err == nil && currentSlot >= result.Slot {
		response.Confirmations = currentSlot - result.Slot
	}
	return response, nil
}

// GetTransactionLogs returns the log messages of a landed transaction
func (p *SolChain) GetTransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error) {
	result, err := p.getTransaction(ctx, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if result == nil || result.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no metadata", sig)
	}
	return result.Meta.LogMessages, nil
}

func (p *SolChain) getTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	version := uint64(0)
	return p.http.GetTransaction(
		ctx,
		sig,
		&rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &version,
		},
	)
}

func (p *SolChain) pollInterval() time.Duration {
	if p.poll > 0 {
		return p.poll
	}
	return 500 * time.Millisecond
}
