package cnftprogram

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCollectionMetadataKeepsPadding(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	name := padded("Collection", 32)
	info := &AccountInfo{
		Key:   solana.NewWallet().PublicKey(),
		Owner: TokenMetadataProgramID,
		Data:  metadataAccountData(t, authority, mint, name, padded("COL", 10), "ipfs://x"),
	}

	metadata, err := ReadCollectionMetadata(info)
	require.NoError(t, err)
	assert.Equal(t, authority, metadata.UpdateAuthority)
	assert.Equal(t, mint, metadata.Mint)
	assert.Equal(t, name, metadata.Name)
	assert.Len(t, metadata.Name, 32)
	assert.Equal(t, padded("COL", 10), metadata.Symbol)
	assert.Equal(t, "ipfs://x", metadata.URI)
}

func TestReadCollectionMetadataWrongKey(t *testing.T) {
	data := metadataAccountData(t, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), "a", "b", "c")
	data[0] = 6 // MasterEditionV2
	_, err := ReadCollectionMetadata(&AccountInfo{Owner: TokenMetadataProgramID, Data: data})
	require.ErrorIs(t, err, ErrAccountDidNotDeserialize)
}

func TestReadCollectionMetadataOversizedString(t *testing.T) {
	data := metadataAccountData(t, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), "a", "b", "c")
	// name length prefix beyond the account
	data[65], data[66], data[67], data[68] = 0xff, 0xff, 0, 0
	_, err := ReadCollectionMetadata(&AccountInfo{Owner: TokenMetadataProgramID, Data: data})
	require.ErrorIs(t, err, ErrAccountDidNotDeserialize)
}

func TestBuildMetadataArgs(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	args := BuildMetadataArgs(mint, authority, &CollectionMetadata{Name: "n", Symbol: "s", URI: "u"})

	assert.Equal(t, "n", args.Name)
	assert.Equal(t, []Creator{{Address: authority, Verified: true, Share: CreatorShare}}, args.Creators)
	assert.Equal(t, mint, args.Collection.Key)
	assert.False(t, args.Collection.Verified)
	assert.Equal(t, TokenProgramVersionOriginal, args.TokenProgramVersion)
}
