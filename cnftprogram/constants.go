package cnftprogram

import "github.com/gagliardetto/solana-go"

// Program IDs
var (
	// ProgramID of the compressed NFT wrapper program (declare_id)
	ProgramID = solana.MustPublicKeyFromBase58("AtaJqV58wFNzFEwWPnYsb4sgns7ePFsj5wKFx7qxcK1N")

	BubblegumProgramID          = solana.MustPublicKeyFromBase58("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	AccountCompressionProgramID = solana.MustPublicKeyFromBase58("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK")
	NoopProgramID               = solana.MustPublicKeyFromBase58("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")
	TokenMetadataProgramID      = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	TokenProgramID              = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	SystemProgramID             = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
)

// PDA Seeds
var (
	SeedAuthority     = []byte("AUTH")
	SeedCollectionCPI = []byte("collection_cpi")
	SeedMetadata      = []byte("metadata")
	SeedMasterEdition = []byte("edition")
)

// Fixed leaf metadata policy
const (
	CreatorShare         uint8  = 100
	SellerFeeBasisPoints uint16 = 0
)

// MintAccountSize is the packed size of an SPL token mint
const MintAccountSize = 82
