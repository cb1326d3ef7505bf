package solprogram

import "compressednft/cnftprogram"

// Program IDs
var (
	// DefaultProgramID - declare_id of the compressed NFT program
	DefaultProgramID = cnftprogram.ProgramID

	BubblegumProgramID          = cnftprogram.BubblegumProgramID
	AccountCompressionProgramID = cnftprogram.AccountCompressionProgramID
	NoopProgramID               = cnftprogram.NoopProgramID
	TokenMetadataProgramID      = cnftprogram.TokenMetadataProgramID
	SystemProgramID             = cnftprogram.SystemProgramID
)

// Concurrent merkle tree account layout
const (
	// account type (1) + header version (1)
	CompressionAccountTypeSize = 2
	// max_buffer_size (4) + max_depth (4) + authority (32) + creation_slot (8) + padding (6)
	ConcurrentMerkleTreeHeaderDataSize = 54
	ConcurrentMerkleTreeHeaderSize     = CompressionAccountTypeSize + ConcurrentMerkleTreeHeaderDataSize

	CompressionAccountTypeConcurrentMerkleTree uint8 = 1
	ConcurrentMerkleTreeHeaderVersionV1        uint8 = 0
)

// DefaultCanopyOffset - canopy depth defaults to max depth minus this
const DefaultCanopyOffset = 5

// RPC URLs
const (
	RPCURLDevnet    = "https://api.devnet.solana.com"
	RPCURLMainnet   = "https://api.mainnet-beta.solana.com"
	RPCURLLocalhost = "http://localhost:8899"
)

// History actions
const (
	ActionCreateTree = "create_tree"
	ActionMint       = "mint_compressed_nft"

	ActionCreateCollection = "create_collection"
)
