package solprogram

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"

	"compressednft/cnftprogram"
)

// CreateCollectionParams - the collection NFT leaves are minted into
type CreateCollectionParams struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}

// Metaplex field limits
const (
	MaxNameLength           = 32
	MaxSymbolLength         = 10
	MaxURILength            = 200
	MaxSellerFeeBasisPoints = 10000
)

// Validate checks the fields against the token metadata limits
func (p CreateCollectionParams) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("collection name is required")
	case p.URI == "":
		return errors.New("collection uri is required")
	case len(p.Name) > MaxNameLength:
		return fmt.Errorf("collection name exceeds %d bytes", MaxNameLength)
	case len(p.Symbol) > MaxSymbolLength:
		return fmt.Errorf("collection symbol exceeds %d bytes", MaxSymbolLength)
	case len(p.URI) > MaxURILength:
		return fmt.Errorf("collection uri exceeds %d bytes", MaxURILength)
	case p.SellerFeeBasisPoints > MaxSellerFeeBasisPoints:
		return fmt.Errorf("seller fee exceeds %d basis points", MaxSellerFeeBasisPoints)
	}
	return nil
}

// CollectionAccounts - addresses of a collection NFT derived from its mint
type CollectionAccounts struct {
	Mint          solana.PublicKey
	Metadata      solana.PublicKey
	MasterEdition solana.PublicKey
	TokenAccount  solana.PublicKey
}

// DeriveCollectionAccounts derives metadata, master edition and the owner's token account for a mint
func DeriveCollectionAccounts(owner, mint solana.PublicKey) (*CollectionAccounts, error) {
	metadata, err := token_metadata.GetTokenMetaPubkey(sdkKey(mint))
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata: %w", err)
	}
	edition, err := token_metadata.GetMasterEdition(sdkKey(mint))
	if err != nil {
		return nil, fmt.Errorf("failed to derive master edition: %w", err)
	}
	ata, _, err := common.FindAssociatedTokenAddress(sdkKey(owner), sdkKey(mint))
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account: %w", err)
	}
	return &CollectionAccounts{
		Mint:          mint,
		Metadata:      solana.PublicKey(metadata),
		MasterEdition: solana.PublicKey(edition),
		TokenAccount:  solana.PublicKey(ata),
	}, nil
}

// BuildCreateCollectionInstructions creates a sized collection NFT held and updatable by payer.
// mintRent is the rent exemption of an 82 byte mint account.
func BuildCreateCollectionInstructions(
	payer solana.PublicKey,
	mint solana.PublicKey,
	mintRent uint64,
	params CreateCollectionParams,
) ([]solana.Instruction, *CollectionAccounts, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	accounts, err := DeriveCollectionAccounts(payer, mint)
	if err != nil {
		return nil, nil, err
	}

	feePayer := sdkKey(payer)
	mintKey := sdkKey(mint)
	metadata := sdkKey(accounts.Metadata)
	edition := sdkKey(accounts.MasterEdition)
	ata := sdkKey(accounts.TokenAccount)
	maxSupply := uint64(0)

	sdkInstructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     feePayer,
			New:      mintKey,
			Owner:    common.TokenProgramID,
			Lamports: mintRent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint2(token.InitializeMint2Param{
			Decimals:   0,
			Mint:       mintKey,
			MintAuth:   feePayer,
			FreezeAuth: &feePayer,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 feePayer,
			Owner:                  feePayer,
			Mint:                   mintKey,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   mintKey,
			To:     ata,
			Auth:   feePayer,
			Amount: 1,
		}),
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadata,
			Mint:                    mintKey,
			MintAuthority:           feePayer,
			UpdateAuthority:         feePayer,
			Payer:                   feePayer,
			UpdateAuthorityIsSigner: true,
			IsMutable:               true,
			Data: token_metadata.DataV2{
				Name:                 params.Name,
				Symbol:               params.Symbol,
				Uri:                  params.URI,
				SellerFeeBasisPoints: params.SellerFeeBasisPoints,
				Creators: &[]token_metadata.Creator{
					{Address: feePayer, Verified: true, Share: 100},
				},
			},
			// sized collection with no verified items yet
			CollectionDetails: &token_metadata.CollectionDetails{
				Enum: 0,
				V1:   token_metadata.CollectionDetailsV1{Size: 0},
			},
		}),
		token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
			Edition:         edition,
			Mint:            mintKey,
			UpdateAuthority: feePayer,
			MintAuthority:   feePayer,
			Metadata:        metadata,
			Payer:           feePayer,
			MaxSupply:       &maxSupply,
		}),
	}

	instructions := make([]solana.Instruction, 0, len(sdkInstructions))
	for _, ix := range sdkInstructions {
		instructions = append(instructions, fromSDKInstruction(ix))
	}
	return instructions, accounts, nil
}

// BuildSetCollectionAuthorityInstruction hands the collection's metadata update authority to the program PDA
func BuildSetCollectionAuthorityInstruction(
	programID solana.PublicKey,
	collectionMint solana.PublicKey,
	updateAuthority solana.PublicKey,
) (solana.Instruction, solana.PublicKey, error) {
	pda, _, err := cnftprogram.DeriveAuthorityPDA(programID)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	metadata, err := token_metadata.GetTokenMetaPubkey(sdkKey(collectionMint))
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive metadata: %w", err)
	}

	newAuthority := sdkKey(pda)
	ix := token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
		MetadataAccount:    metadata,
		UpdateAuthority:    sdkKey(updateAuthority),
		NewUpdateAuthority: &newAuthority,
	})
	return fromSDKInstruction(ix), pda, nil
}

func sdkKey(key solana.PublicKey) common.PublicKey {
	return common.PublicKey(key)
}

// fromSDKInstruction converts a blocto instruction into one the transaction builder accepts
func fromSDKInstruction(ix types.Instruction) solana.Instruction {
	metas := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, account := range ix.Accounts {
		metas = append(metas, solana.NewAccountMeta(solana.PublicKey(account.PubKey), account.IsWritable, account.IsSigner))
	}
	return solana.NewInstruction(solana.PublicKey(ix.ProgramID), metas, ix.Data)
}
