package cnftprogram

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// CollectionMetadata - the fields of a collection's metadata read by the mint entry point
type CollectionMetadata struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
}

// MetadataKeyV1 is the account key byte of a Metaplex metadata account
const MetadataKeyV1 uint8 = 4

// ReadCollectionMetadata decodes the leading fields of a Metaplex metadata account.
// Name, symbol and uri are returned exactly as stored, including the fixed-width padding.
func ReadCollectionMetadata(info *AccountInfo) (*CollectionMetadata, error) {
	if !info.Owner.Equals(TokenMetadataProgramID) {
		return nil, accountError("collection_metadata", ErrAccountOwnedByWrongProgram)
	}
	metadata, err := decodeCollectionMetadata(info.Data)
	if err != nil {
		return nil, fmt.Errorf("collection_metadata: %w: %v", ErrAccountDidNotDeserialize, err)
	}
	return metadata, nil
}

func decodeCollectionMetadata(data []byte) (*CollectionMetadata, error) {
	dec := bin.NewBorshDecoder(data)
	key, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if key != MetadataKeyV1 {
		return nil, fmt.Errorf("unexpected account key %d", key)
	}

	var m CollectionMetadata
	if m.UpdateAuthority, err = readPublicKey(dec); err != nil {
		return nil, fmt.Errorf("update_authority: %w", err)
	}
	if m.Mint, err = readPublicKey(dec); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if m.Name, err = readString(dec); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if m.Symbol, err = readString(dec); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if m.URI, err = readString(dec); err != nil {
		return nil, fmt.Errorf("uri: %w", err)
	}
	return &m, nil
}

// readMintAccount checks that the collection mint is an initialized SPL mint
func readMintAccount(info *AccountInfo) (*token.Mint, error) {
	if !info.Owner.Equals(TokenProgramID) {
		return nil, accountError("collection_mint", ErrAccountOwnedByWrongProgram)
	}
	if len(info.Data) != MintAccountSize {
		return nil, accountError("collection_mint", ErrAccountDidNotDeserialize)
	}
	var mint token.Mint
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(info.Data)); err != nil {
		return nil, fmt.Errorf("collection_mint: %w: %v", ErrAccountDidNotDeserialize, err)
	}
	if !mint.IsInitialized {
		return nil, accountError("collection_mint", ErrAccountDidNotDeserialize)
	}
	return &mint, nil
}

// BuildMetadataArgs assembles the leaf metadata for a mint into the collection.
// The authority PDA is the only creator; every other field is fixed policy.
func BuildMetadataArgs(collectionMint, authority solana.PublicKey, collection *CollectionMetadata) *MetadataArgs {
	standard := TokenStandardNonFungible
	return &MetadataArgs{
		Name:   collection.Name,
		Symbol: collection.Symbol,
		URI:    collection.URI,
		Collection: &Collection{
			Key:      collectionMint,
			Verified: false,
		},
		PrimarySaleHappened: true,
		IsMutable:           true,
		EditionNonce:        nil,
		TokenStandard:       &standard,
		Uses:                nil,
		TokenProgramVersion: TokenProgramVersionOriginal,
		Creators: []Creator{
			{
				Address:  authority,
				Verified: true,
				Share:    CreatorShare,
			},
		},
		SellerFeeBasisPoints: SellerFeeBasisPoints,
	}
}
