package solprogram

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// parseTreeHeader - Parse concurrent merkle tree account data
func parseTreeHeader(data []byte) (*TreeInfo, error) {
	if len(data) < ConcurrentMerkleTreeHeaderSize {
		return nil, fmt.Errorf("invalid merkle tree data length: %d", len(data))
	}
	dec := bin.NewBorshDecoder(data)

	accountType, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if accountType != CompressionAccountTypeConcurrentMerkleTree {
		return nil, fmt.Errorf("account is not a concurrent merkle tree (type %d)", accountType)
	}
	version, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != ConcurrentMerkleTreeHeaderVersionV1 {
		return nil, fmt.Errorf("unsupported merkle tree header version %d", version)
	}

	info := &TreeInfo{}
	if info.MaxBufferSize, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return nil, err
	}
	if info.MaxDepth, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return nil, err
	}
	authority, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}
	info.Authority = solana.PublicKeyFromBytes(authority)
	if info.CreationSlot, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, err
	}

	info.CanopyDepth, err = canopyDepthFromSize(info.MaxDepth, info.MaxBufferSize, uint64(len(data)))
	if err != nil {
		return nil, err
	}
	info.Capacity = uint64(1) << info.MaxDepth
	return info, nil
}

// canopyDepthFromSize recovers the canopy depth from the bytes left after the tree
func canopyDepthFromSize(maxDepth, maxBufferSize uint32, size uint64) (uint32, error) {
	base, err := ConcurrentMerkleTreeAccountSize(maxDepth, maxBufferSize, 0)
	if err != nil {
		return 0, err
	}
	if size < base || (size-base)%32 != 0 {
		return 0, fmt.Errorf("merkle tree account size %d does not match depth %d buffer %d", size, maxDepth, maxBufferSize)
	}
	// canopy holds 2^(d+1) - 2 nodes
	nodes := (size-base)/32 + 2
	if bits.OnesCount64(nodes) != 1 {
		return 0, fmt.Errorf("invalid canopy size %d", size-base)
	}
	return uint32(bits.TrailingZeros64(nodes)) - 1, nil
}
