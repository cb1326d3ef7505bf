package solprogram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"compressednft/chainsol"
	"compressednft/cnftprogram"
)

var (
	ErrTreeNotFound        = errors.New("merkle tree account not found")
	ErrTreeNotInitialized  = errors.New("merkle tree is not managed by bubblegum")
	ErrCollectionNotFound  = errors.New("collection metadata account not found")
	ErrCollectionAuthority = errors.New("collection update authority is not the program authority PDA")
)

// CreateTree - allocate and create a tree in one transaction, signed server side
func (c *Client) CreateTree(
	ctx context.Context,
	payerKey solana.PrivateKey,
	params CreateTreeParams,
) (*CreateTreeResponse, error) {
	payer := payerKey.PublicKey()
	tree := solana.NewWallet()

	instructions, space, err := c.createTreeInstructions(ctx, payer, tree.PublicKey(), params)
	if err != nil {
		return nil, err
	}

	sig, status, err := c.signAndSend(ctx, instructions, payer, payerKey, tree.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree: %s: %w", ParseSolanaError(err), err)
	}

	treeAuthority, _, _ := cnftprogram.DeriveTreeAuthorityPDA(tree.PublicKey())
	resp := &CreateTreeResponse{
		TransactionID: chainsol.NewTransactionID(),
		MerkleTree:    tree.PublicKey(),
		TreeAuthority: treeAuthority,
		AccountSize:   space,
		Signature:     sig.String(),
		ExplorerURL:   c.Chain.GetExplorerURL(sig.String()),
		Message:       "Tree created successfully",
	}
	c.record(ctx, &chainsol.TransactionHistory{
		TransactionID: resp.TransactionID,
		Action:        ActionCreateTree,
		Payer:         payer.String(),
		MerkleTree:    resp.MerkleTree.String(),
		TreeAuthority: treeAuthority.String(),
		Signature:     resp.Signature,
		Status:        status,
	})
	return resp, nil
}

// CreateUnsignedTree - Create unsigned transaction for client-side signing.
// The fresh tree account signs here, so only the payer signature is missing.
func (c *Client) CreateUnsignedTree(
	ctx context.Context,
	payer solana.PublicKey,
	params CreateTreeParams,
) (*CreateTreeResponse, error) {
	tree := solana.NewWallet()

	instructions, space, err := c.createTreeInstructions(ctx, payer, tree.PublicKey(), params)
	if err != nil {
		return nil, err
	}

	unsigned, err := c.CreateTransaction(ctx, instructions, payer, tree.PrivateKey)
	if err != nil {
		return nil, err
	}

	treeAuthority, _, _ := cnftprogram.DeriveTreeAuthorityPDA(tree.PublicKey())
	c.record(ctx, &chainsol.TransactionHistory{
		TransactionID: unsigned.TransactionID,
		Action:        ActionCreateTree,
		Payer:         payer.String(),
		MerkleTree:    tree.PublicKey().String(),
		TreeAuthority: treeAuthority.String(),
	})

	return &CreateTreeResponse{
		TransactionID:       unsigned.TransactionID,
		MerkleTree:          tree.PublicKey(),
		TreeAuthority:       treeAuthority,
		AccountSize:         space,
		UnsignedTransaction: unsigned.UnsignedTransaction,
		Message:             "Create tree transaction created. Sign on client side.",
	}, nil
}

func (c *Client) createTreeInstructions(
	ctx context.Context,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	params CreateTreeParams,
) ([]solana.Instruction, uint64, error) {
	allocIx, space, err := BuildAllocTreeInstruction(ctx, c.RPC, payer, merkleTree, params)
	if err != nil {
		return nil, 0, err
	}
	createIx, err := BuildAnchorCreateTreeInstruction(c.ProgramID, payer, merkleTree, params.MaxDepth, params.MaxBufferSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build instruction: %w", err)
	}

	c.logger.Debug("create tree instructions built",
		zap.Stringer("merkle_tree", merkleTree),
		zap.Uint32("max_depth", params.MaxDepth),
		zap.Uint32("max_buffer_size", params.MaxBufferSize),
		zap.Uint32("canopy_depth", params.CanopyDepth),
		zap.Uint64("space", space),
	)
	return []solana.Instruction{allocIx, createIx}, space, nil
}

// CreateCollection - create the collection NFT and hand its update authority to the program PDA, signed server side
func (c *Client) CreateCollection(
	ctx context.Context,
	payerKey solana.PrivateKey,
	params CreateCollectionParams,
) (*CollectionResponse, error) {
	payer := payerKey.PublicKey()
	mint := solana.NewWallet()

	instructions, resp, err := c.collectionInstructions(ctx, payer, mint.PublicKey(), params)
	if err != nil {
		return nil, err
	}

	sig, status, err := c.signAndSend(ctx, instructions, payer, payerKey, mint.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %s: %w", ParseSolanaError(err), err)
	}

	resp.TransactionID = chainsol.NewTransactionID()
	resp.Signature = sig.String()
	resp.ExplorerURL = c.Chain.GetExplorerURL(sig.String())
	resp.Message = "Collection created successfully"
	c.record(ctx, c.collectionHistory(payer, resp, status))
	return resp, nil
}

// CreateUnsignedCollection - Create unsigned collection transaction for client-side signing.
// The fresh mint account signs here, so only the payer signature is missing.
func (c *Client) CreateUnsignedCollection(
	ctx context.Context,
	payer solana.PublicKey,
	params CreateCollectionParams,
) (*CollectionResponse, error) {
	mint := solana.NewWallet()

	instructions, resp, err := c.collectionInstructions(ctx, payer, mint.PublicKey(), params)
	if err != nil {
		return nil, err
	}

	unsigned, err := c.CreateTransaction(ctx, instructions, payer, mint.PrivateKey)
	if err != nil {
		return nil, err
	}

	resp.TransactionID = unsigned.TransactionID
	resp.UnsignedTransaction = unsigned.UnsignedTransaction
	resp.Message = "Create collection transaction created. Sign on client side."
	c.record(ctx, c.collectionHistory(payer, resp, chainsol.StatusCreated))
	return resp, nil
}

func (c *Client) collectionInstructions(
	ctx context.Context,
	payer solana.PublicKey,
	mint solana.PublicKey,
	params CreateCollectionParams,
) ([]solana.Instruction, *CollectionResponse, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	rent, err := c.RPC.GetMinimumBalanceForRentExemption(ctx, cnftprogram.MintAccountSize, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	instructions, accounts, err := BuildCreateCollectionInstructions(payer, mint, rent, params)
	if err != nil {
		return nil, nil, err
	}
	authorityIx, pda, err := BuildSetCollectionAuthorityInstruction(c.ProgramID, mint, payer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	c.logger.Debug("create collection instructions built",
		zap.Stringer("collection_mint", mint),
		zap.Stringer("metadata", accounts.Metadata),
		zap.Stringer("update_authority", pda),
	)
	return append(instructions, authorityIx), &CollectionResponse{
		CollectionMint:  mint,
		Metadata:        accounts.Metadata,
		MasterEdition:   accounts.MasterEdition,
		TokenAccount:    accounts.TokenAccount,
		UpdateAuthority: pda,
	}, nil
}

func (c *Client) collectionHistory(payer solana.PublicKey, resp *CollectionResponse, status string) *chainsol.TransactionHistory {
	return &chainsol.TransactionHistory{
		TransactionID: resp.TransactionID,
		Action:        ActionCreateCollection,
		Payer:         payer.String(),
		Collection:    resp.CollectionMint.String(),
		Signature:     resp.Signature,
		Status:        status,
	}
}

// MintCompressedNft - mint one leaf into the collection, signed server side
func (c *Client) MintCompressedNft(
	ctx context.Context,
	payerKey solana.PrivateKey,
	merkleTree solana.PublicKey,
	collectionMint solana.PublicKey,
) (*MintResponse, error) {
	payer := payerKey.PublicKey()
	instruction, err := c.mintInstruction(ctx, payer, merkleTree, collectionMint)
	if err != nil {
		return nil, err
	}

	sig, status, err := c.signAndSend(ctx, []solana.Instruction{instruction}, payer, payerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to mint: %s: %w", ParseSolanaError(err), err)
	}

	resp := c.mintResponse(chainsol.NewTransactionID(), payer, merkleTree, collectionMint)
	resp.Signature = sig.String()
	resp.ExplorerURL = c.Chain.GetExplorerURL(sig.String())
	resp.Message = "Compressed NFT minted successfully"
	c.record(ctx, c.mintHistory(resp, status))
	return resp, nil
}

// CreateUnsignedMint - Create unsigned mint transaction for client-side signing
func (c *Client) CreateUnsignedMint(
	ctx context.Context,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	collectionMint solana.PublicKey,
) (*MintResponse, error) {
	instruction, err := c.mintInstruction(ctx, payer, merkleTree, collectionMint)
	if err != nil {
		return nil, err
	}

	unsigned, err := c.CreateTransaction(ctx, []solana.Instruction{instruction}, payer)
	if err != nil {
		return nil, err
	}

	resp := c.mintResponse(unsigned.TransactionID, payer, merkleTree, collectionMint)
	resp.UnsignedTransaction = unsigned.UnsignedTransaction
	resp.Message = "Mint transaction created. Sign on client side."
	c.record(ctx, c.mintHistory(resp, chainsol.StatusCreated))
	return resp, nil
}

// mintInstruction checks the preconditions the program relies on, then builds the instruction
func (c *Client) mintInstruction(
	ctx context.Context,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	collectionMint solana.PublicKey,
) (solana.Instruction, error) {
	tree, err := c.GetTreeInfo(ctx, merkleTree)
	if err != nil {
		return nil, err
	}
	if !tree.BubblegumManaged {
		return nil, ErrTreeNotInitialized
	}
	preview, err := c.GetCollectionMetadata(ctx, collectionMint)
	if err != nil {
		return nil, err
	}
	if !preview.AuthorityIsPDA {
		return nil, fmt.Errorf("%w: %s", ErrCollectionAuthority, preview.UpdateAuthority)
	}

	instruction, err := BuildMintCompressedNftInstruction(c.ProgramID, payer, merkleTree, collectionMint)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return instruction, nil
}

func (c *Client) mintResponse(transactionID string, payer, merkleTree, collectionMint solana.PublicKey) *MintResponse {
	treeAuthority, _, _ := cnftprogram.DeriveTreeAuthorityPDA(merkleTree)
	return &MintResponse{
		TransactionID:  transactionID,
		MerkleTree:     merkleTree,
		TreeAuthority:  treeAuthority,
		CollectionMint: collectionMint,
		LeafOwner:      payer,
	}
}

func (c *Client) mintHistory(resp *MintResponse, status string) *chainsol.TransactionHistory {
	return &chainsol.TransactionHistory{
		TransactionID: resp.TransactionID,
		Action:        ActionMint,
		Payer:         resp.LeafOwner.String(),
		MerkleTree:    resp.MerkleTree.String(),
		TreeAuthority: resp.TreeAuthority.String(),
		Collection:    resp.CollectionMint.String(),
		Signature:     resp.Signature,
		Status:        status,
	}
}

func (c *Client) record(ctx context.Context, history *chainsol.TransactionHistory) {
	if err := c.Chain.RecordHistory(ctx, history); err != nil {
		c.logger.Warn("failed to record history", zap.String("transaction_id", history.TransactionID), zap.Error(err))
	}
}

// WaitForConfirmation - Wait for transaction confirmation with timeout
func (c *Client) WaitForConfirmation(ctx context.Context, signature string, timeout time.Duration) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	return c.Chain.WaitForConfirmation(ctx, sig, timeout)
}

// GetTransactionEvents decodes the program's events from a landed transaction
func (c *Client) GetTransactionEvents(ctx context.Context, signature string) ([]EventView, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	logs, err := c.Chain.GetTransactionLogs(ctx, sig)
	if err != nil {
		return nil, err
	}
	events, err := cnftprogram.ParseProgramEvents(c.ProgramID, logs)
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, EventView{Name: ev.EventName(), Data: ev})
	}
	return views, nil
}

// GetTreeInfo - Get merkle tree header
func (c *Client) GetTreeInfo(ctx context.Context, merkleTree solana.PublicKey) (*TreeInfo, error) {
	account, err := c.RPC.GetAccountInfo(ctx, merkleTree)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, merkleTree)
		}
		return nil, fmt.Errorf("failed to get tree account: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, merkleTree)
	}
	if !account.Value.Owner.Equals(AccountCompressionProgramID) {
		return nil, fmt.Errorf("%w: %s is owned by %s, not account compression", ErrTreeNotInitialized, merkleTree, account.Value.Owner)
	}

	info, err := parseTreeHeader(account.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	info.Address = merkleTree

	treeAuthority, _, err := cnftprogram.DeriveTreeAuthorityPDA(merkleTree)
	if err != nil {
		return nil, err
	}
	info.BubblegumManaged = info.Authority.Equals(treeAuthority)
	return info, nil
}

// GetCollectionMetadata reads the collection metadata and previews the leaf metadata a mint copies from it
func (c *Client) GetCollectionMetadata(ctx context.Context, collectionMint solana.PublicKey) (*CollectionPreview, error) {
	metadataAddress, _, err := cnftprogram.DeriveMetadataPDA(collectionMint)
	if err != nil {
		return nil, err
	}
	editionAddress, _, err := cnftprogram.DeriveMasterEditionPDA(collectionMint)
	if err != nil {
		return nil, err
	}

	account, err := c.RPC.GetAccountInfo(ctx, metadataAddress)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, metadataAddress)
		}
		return nil, fmt.Errorf("failed to get metadata account: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, metadataAddress)
	}

	data := account.Value.Data.GetBinary()
	raw, err := cnftprogram.ReadCollectionMetadata(&cnftprogram.AccountInfo{
		Key:   metadataAddress,
		Owner: account.Value.Owner,
		Data:  data,
	})
	if err != nil {
		return nil, err
	}

	pda, _, err := cnftprogram.DeriveAuthorityPDA(c.ProgramID)
	if err != nil {
		return nil, err
	}

	preview := &CollectionPreview{
		CollectionMint:  collectionMint,
		Metadata:        metadataAddress,
		MasterEdition:   editionAddress,
		UpdateAuthority: raw.UpdateAuthority,
		AuthorityIsPDA:  raw.UpdateAuthority.Equals(pda),
		Leaf:            cnftprogram.BuildMetadataArgs(collectionMint, pda, raw),
	}

	decoded, err := token_metadata.MetadataDeserialize(data)
	if err != nil {
		c.logger.Debug("full metadata decode failed", zap.Stringer("metadata", metadataAddress), zap.Error(err))
		preview.Name = strings.TrimRight(raw.Name, "\x00")
		preview.Symbol = strings.TrimRight(raw.Symbol, "\x00")
		preview.URI = strings.TrimRight(raw.URI, "\x00")
		return preview, nil
	}
	applyDecodedMetadata(preview, &decoded)
	return preview, nil
}

// applyDecodedMetadata fills the fields only the full metadata layout carries
func applyDecodedMetadata(preview *CollectionPreview, decoded *token_metadata.Metadata) {
	preview.Name = decoded.Data.Name
	preview.Symbol = decoded.Data.Symbol
	preview.URI = decoded.Data.Uri
	preview.SellerFeeBasisPoints = decoded.Data.SellerFeeBasisPoints
	preview.PrimarySaleHappened = decoded.PrimarySaleHappened
	preview.IsMutable = decoded.IsMutable

	if decoded.Data.Creators != nil {
		for _, creator := range *decoded.Data.Creators {
			preview.Creators = append(preview.Creators, cnftprogram.Creator{
				Address:  solana.PublicKey(creator.Address),
				Verified: creator.Verified,
				Share:    creator.Share,
			})
		}
	}
	if decoded.TokenStandard != nil {
		standard := cnftprogram.TokenStandard(*decoded.TokenStandard)
		preview.TokenStandard = &standard
	}
	if decoded.CollectionDetails != nil {
		size := decoded.CollectionDetails.V1.Size
		preview.IsCollection = true
		preview.CollectionSize = &size
	}
}
