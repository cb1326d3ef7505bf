package solprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/samber/lo"
)

// DepthSizePair - a (max_depth, max_buffer_size) combination the compression program accepts
type DepthSizePair struct {
	MaxDepth      uint32 `json:"max_depth"`
	MaxBufferSize uint32 `json:"max_buffer_size"`
}

var ValidDepthSizePairs = []DepthSizePair{
	{3, 8},
	{5, 8},
	{14, 64},
	{14, 256},
	{14, 1024},
	{14, 2048},
	{15, 64},
	{16, 64},
	{17, 64},
	{18, 64},
	{19, 64},
	{20, 64},
	{20, 256},
	{20, 1024},
	{20, 2048},
	{24, 64},
	{24, 256},
	{24, 512},
	{24, 1024},
	{24, 2048},
	{26, 512},
	{26, 1024},
	{26, 2048},
	{30, 512},
	{30, 1024},
	{30, 2048},
}

// ValidateDepthSizePair checks the pair before any lamports are spent on allocation
func ValidateDepthSizePair(maxDepth, maxBufferSize uint32) error {
	if !lo.Contains(ValidDepthSizePairs, DepthSizePair{MaxDepth: maxDepth, MaxBufferSize: maxBufferSize}) {
		return fmt.Errorf("invalid depth/buffer pair (%d, %d)", maxDepth, maxBufferSize)
	}
	return nil
}

// ConcurrentMerkleTreeAccountSize - bytes needed for the header, the tree and its canopy
func ConcurrentMerkleTreeAccountSize(maxDepth, maxBufferSize, canopyDepth uint32) (uint64, error) {
	if err := ValidateDepthSizePair(maxDepth, maxBufferSize); err != nil {
		return 0, err
	}
	if canopyDepth > maxDepth {
		return 0, fmt.Errorf("canopy depth %d exceeds max depth %d", canopyDepth, maxDepth)
	}
	depth := uint64(maxDepth)
	buffer := uint64(maxBufferSize)

	// sequence_number, active_index, buffer_size
	tree := uint64(8 + 8 + 8)
	// change logs: root, path, index, padding
	tree += buffer * (32 + 32*depth + 4 + 4)
	// rightmost path: proof, leaf, index, padding
	tree += 32*depth + 32 + 4 + 4

	return ConcurrentMerkleTreeHeaderSize + tree + canopySize(canopyDepth), nil
}

func canopySize(canopyDepth uint32) uint64 {
	if canopyDepth == 0 {
		return 0
	}
	return ((uint64(1) << (canopyDepth + 1)) - 2) * 32
}

// BuildAllocTreeInstruction creates the tree account, rent exempt and owned by account compression
func BuildAllocTreeInstruction(
	ctx context.Context,
	rpcClient *rpc.Client,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	params CreateTreeParams,
) (solana.Instruction, uint64, error) {
	space, err := ConcurrentMerkleTreeAccountSize(params.MaxDepth, params.MaxBufferSize, params.CanopyDepth)
	if err != nil {
		return nil, 0, err
	}
	lamports, err := rpcClient.GetMinimumBalanceForRentExemption(ctx, space, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	return system.NewCreateAccountInstruction(
		lamports,
		space,
		AccountCompressionProgramID,
		payer,
		merkleTree,
	).Build(), space, nil
}
