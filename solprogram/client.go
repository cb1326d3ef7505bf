package solprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"compressednft/chainsol"
)

// Client talks to the deployed compressed NFT program
type Client struct {
	Chain     *chainsol.SolChain
	RPC       *rpc.Client
	ProgramID solana.PublicKey
	logger    *zap.Logger
}

// NewClient creates new Solana program client
func NewClient(chain *chainsol.SolChain, programID string, logger *zap.Logger) (*Client, error) {
	programPubkey, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}
	if logger == nil {
		logger = zap.L()
	}

	return &Client{
		Chain:     chain,
		RPC:       chain.RPC(),
		ProgramID: programPubkey,
		logger:    logger.Named("solprogram"),
	}, nil
}

// CreateTransaction creates unsigned transaction for multiple instructions,
// signed by the given server-held cosigners
func (c *Client) CreateTransaction(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	cosigners ...solana.PrivateKey,
) (*chainsol.CreateTransactionResponse, error) {
	return c.Chain.BuildUnsignedTransaction(ctx, instructions, payer, cosigners...)
}

// SendTransaction sends signed transaction
func (c *Client) SendTransaction(ctx context.Context, req chainsol.SignedTransactionRequest) (*chainsol.TransactionResult, error) {
	result, err := c.Chain.SendSignedTransaction(ctx, req)
	if err != nil {
		c.logger.Warn("send transaction failed",
			zap.String("transaction_id", req.TransactionID),
			zap.String("reason", ParseSolanaError(err)),
			zap.Error(err),
		)
		return result, err
	}
	return result, nil
}

// signAndSend signs with every key server side and submits
func (c *Client) signAndSend(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	signers ...solana.PrivateKey,
) (solana.Signature, string, error) {
	tx, err := c.Chain.NewTransaction(ctx, instructions, payer)
	if err != nil {
		return solana.Signature{}, "", err
	}
	if err := chainsol.PartialSign(tx, signers...); err != nil {
		return solana.Signature{}, "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	return c.Chain.SendTransaction(ctx, tx)
}
