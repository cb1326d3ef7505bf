package solprogram

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"compressednft/cnftprogram"
)

var (
	AnchorCreateTreeDisc  = cnftprogram.AnchorDiscriminator("global", "anchor_create_tree")
	MintCompressedNftDisc = cnftprogram.AnchorDiscriminator("global", "mint_compressed_nft")
)

// BuildAnchorCreateTreeInstruction builds anchor_create_tree(max_depth, max_buffer_size)
func BuildAnchorCreateTreeInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	maxDepth uint32,
	maxBufferSize uint32,
) (solana.Instruction, error) {
	pda, _, err := cnftprogram.DeriveAuthorityPDA(programID)
	if err != nil {
		return nil, err
	}
	treeAuthority, _, err := cnftprogram.DeriveTreeAuthorityPDA(merkleTree)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(AnchorCreateTreeDisc[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(maxDepth, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(maxBufferSize, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode args: %w", err)
	}

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(pda),
			solana.Meta(treeAuthority).WRITE(),
			solana.Meta(merkleTree).WRITE(),
			solana.Meta(NoopProgramID),
			solana.Meta(SystemProgramID),
			solana.Meta(BubblegumProgramID),
			solana.Meta(AccountCompressionProgramID),
		},
		buf.Bytes(),
	), nil
}

// BuildMintCompressedNftInstruction builds mint_compressed_nft. It takes no args;
// every address is derived from the tree and the collection mint.
func BuildMintCompressedNftInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	merkleTree solana.PublicKey,
	collectionMint solana.PublicKey,
) (solana.Instruction, error) {
	pda, _, err := cnftprogram.DeriveAuthorityPDA(programID)
	if err != nil {
		return nil, err
	}
	treeAuthority, _, err := cnftprogram.DeriveTreeAuthorityPDA(merkleTree)
	if err != nil {
		return nil, err
	}
	bubblegumSigner, _, err := cnftprogram.DeriveBubblegumSignerPDA()
	if err != nil {
		return nil, err
	}
	metadata, _, err := cnftprogram.DeriveMetadataPDA(collectionMint)
	if err != nil {
		return nil, err
	}
	edition, _, err := cnftprogram.DeriveMasterEditionPDA(collectionMint)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(pda),
			solana.Meta(treeAuthority).WRITE(),
			solana.Meta(merkleTree).WRITE(),
			solana.Meta(bubblegumSigner),
			solana.Meta(NoopProgramID),
			solana.Meta(AccountCompressionProgramID),
			solana.Meta(BubblegumProgramID),
			solana.Meta(TokenMetadataProgramID),
			solana.Meta(SystemProgramID),
			solana.Meta(collectionMint),
			solana.Meta(metadata).WRITE(),
			solana.Meta(edition),
		},
		MintCompressedNftDisc[:],
	), nil
}
