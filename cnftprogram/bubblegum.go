package cnftprogram

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Bubblegum instruction discriminators
var (
	CreateTreeDiscriminator         = AnchorDiscriminator("global", "create_tree")
	MintToCollectionV1Discriminator = AnchorDiscriminator("global", "mint_to_collection_v1")
)

type CreateTreeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

func (a *CreateTreeArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(a.MaxDepth, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint32(a.MaxBufferSize, binary.LittleEndian); err != nil {
		return err
	}
	if err := writeOption(enc, a.Public != nil); err != nil {
		return err
	}
	if a.Public != nil {
		return enc.WriteBool(*a.Public)
	}
	return nil
}

func (a *CreateTreeArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if a.MaxDepth, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}
	if a.MaxBufferSize, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}
	some, err := dec.ReadBool()
	if err != nil {
		return err
	}
	if some {
		public, err := dec.ReadBool()
		if err != nil {
			return err
		}
		a.Public = &public
	}
	return nil
}

type CreateTreeAccounts struct {
	TreeAuthority      solana.PublicKey
	MerkleTree         solana.PublicKey
	Payer              solana.PublicKey
	TreeCreator        solana.PublicKey
	LogWrapper         solana.PublicKey
	CompressionProgram solana.PublicKey
	SystemProgram      solana.PublicKey
}

// NewCreateTreeInstruction builds Bubblegum create_tree
func NewCreateTreeInstruction(
	accounts *CreateTreeAccounts,
	args *CreateTreeArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(CreateTreeDiscriminator, args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create_tree args: %w", err)
	}

	return solana.NewInstruction(
		BubblegumProgramID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.TreeAuthority).WRITE(),
			solana.Meta(accounts.MerkleTree).WRITE(),
			solana.Meta(accounts.Payer).WRITE().SIGNER(),
			solana.Meta(accounts.TreeCreator).SIGNER(),
			solana.Meta(accounts.LogWrapper),
			solana.Meta(accounts.CompressionProgram),
			solana.Meta(accounts.SystemProgram),
		},
		data,
	), nil
}

type MintToCollectionV1Accounts struct {
	TreeAuthority                solana.PublicKey
	LeafOwner                    solana.PublicKey
	LeafDelegate                 solana.PublicKey
	MerkleTree                   solana.PublicKey
	Payer                        solana.PublicKey
	TreeDelegate                 solana.PublicKey
	CollectionAuthority          solana.PublicKey
	CollectionAuthorityRecordPDA solana.PublicKey
	CollectionMint               solana.PublicKey
	CollectionMetadata           solana.PublicKey
	EditionAccount               solana.PublicKey
	BubblegumSigner              solana.PublicKey
	LogWrapper                   solana.PublicKey
	CompressionProgram           solana.PublicKey
	TokenMetadataProgram         solana.PublicKey
	SystemProgram                solana.PublicKey
}

// NewMintToCollectionV1Instruction builds Bubblegum mint_to_collection_v1.
// Passing the Bubblegum program id as collection_authority_record_pda means "no record".
func NewMintToCollectionV1Instruction(
	accounts *MintToCollectionV1Accounts,
	metadata *MetadataArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(MintToCollectionV1Discriminator, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mint_to_collection_v1 args: %w", err)
	}

	return solana.NewInstruction(
		BubblegumProgramID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.TreeAuthority).WRITE(),
			solana.Meta(accounts.LeafOwner),
			solana.Meta(accounts.LeafDelegate),
			solana.Meta(accounts.MerkleTree).WRITE(),
			solana.Meta(accounts.Payer).WRITE().SIGNER(),
			solana.Meta(accounts.TreeDelegate).SIGNER(),
			solana.Meta(accounts.CollectionAuthority).SIGNER(),
			solana.Meta(accounts.CollectionAuthorityRecordPDA),
			solana.Meta(accounts.CollectionMint),
			solana.Meta(accounts.CollectionMetadata).WRITE(),
			solana.Meta(accounts.EditionAccount),
			solana.Meta(accounts.BubblegumSigner),
			solana.Meta(accounts.LogWrapper),
			solana.Meta(accounts.CompressionProgram),
			solana.Meta(accounts.TokenMetadataProgram),
			solana.Meta(accounts.SystemProgram),
		},
		data,
	), nil
}
