package solprogram

import (
	"github.com/gagliardetto/solana-go"

	"compressednft/cnftprogram"
)

// CreateTreeParams - shape of a new tree
type CreateTreeParams struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	CanopyDepth   uint32
}

// NewCreateTreeParams fills in the default canopy depth
func NewCreateTreeParams(maxDepth, maxBufferSize uint32, canopyDepth *uint32) CreateTreeParams {
	params := CreateTreeParams{MaxDepth: maxDepth, MaxBufferSize: maxBufferSize}
	switch {
	case canopyDepth != nil:
		params.CanopyDepth = *canopyDepth
	case maxDepth > DefaultCanopyOffset:
		params.CanopyDepth = maxDepth - DefaultCanopyOffset
	}
	return params
}

// CreateTreeResponse - Response after create tree
type CreateTreeResponse struct {
	TransactionID       string           `json:"transaction_id"`
	MerkleTree          solana.PublicKey `json:"merkle_tree"`
	TreeAuthority       solana.PublicKey `json:"tree_authority"`
	AccountSize         uint64           `json:"account_size"`
	Signature           string           `json:"signature,omitempty"`
	UnsignedTransaction string           `json:"unsigned_transaction,omitempty"`
	ExplorerURL         string           `json:"explorer_url,omitempty"`
	Message             string           `json:"message"`
}

// MintResponse - Response after mint compressed nft
type MintResponse struct {
	TransactionID       string           `json:"transaction_id"`
	MerkleTree          solana.PublicKey `json:"merkle_tree"`
	TreeAuthority       solana.PublicKey `json:"tree_authority"`
	CollectionMint      solana.PublicKey `json:"collection_mint"`
	LeafOwner           solana.PublicKey `json:"leaf_owner"`
	Signature           string           `json:"signature,omitempty"`
	UnsignedTransaction string           `json:"unsigned_transaction,omitempty"`
	ExplorerURL         string           `json:"explorer_url,omitempty"`
	Message             string           `json:"message"`
}

// TreeInfo - header of a concurrent merkle tree account
type TreeInfo struct {
	Address       solana.PublicKey `json:"address"`
	MaxDepth      uint32           `json:"max_depth"`
	MaxBufferSize uint32           `json:"max_buffer_size"`
	CanopyDepth   uint32           `json:"canopy_depth"`
	Capacity      uint64           `json:"capacity"`
	Authority     solana.PublicKey `json:"authority"`
	CreationSlot  uint64           `json:"creation_slot"`
	// Authority matches the Bubblegum tree config PDA of this tree
	BubblegumManaged bool `json:"bubblegum_managed"`
}

// CollectionPreview - collection metadata and the leaf metadata a mint would produce
type CollectionPreview struct {
	CollectionMint  solana.PublicKey `json:"collection_mint"`
	Metadata        solana.PublicKey `json:"metadata"`
	MasterEdition   solana.PublicKey `json:"master_edition"`
	UpdateAuthority solana.PublicKey `json:"update_authority"`
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	URI             string           `json:"uri"`

	SellerFeeBasisPoints uint16                     `json:"seller_fee_basis_points"`
	Creators             []cnftprogram.Creator      `json:"creators,omitempty"`
	PrimarySaleHappened  bool                       `json:"primary_sale_happened"`
	IsMutable            bool                       `json:"is_mutable"`
	TokenStandard        *cnftprogram.TokenStandard `json:"token_standard,omitempty"`
	// IsCollection is set when the metadata carries collection details, CollectionSize counts verified items
	IsCollection   bool    `json:"is_collection"`
	CollectionSize *uint64 `json:"collection_size,omitempty"`

	// UpdateAuthority is the program authority PDA, required for minting into the collection
	AuthorityIsPDA bool                      `json:"authority_is_pda"`
	Leaf           *cnftprogram.MetadataArgs `json:"leaf"`
}

// CollectionResponse - Response after create collection
type CollectionResponse struct {
	TransactionID       string           `json:"transaction_id"`
	CollectionMint      solana.PublicKey `json:"collection_mint"`
	Metadata            solana.PublicKey `json:"metadata"`
	MasterEdition       solana.PublicKey `json:"master_edition"`
	TokenAccount        solana.PublicKey `json:"token_account"`
	UpdateAuthority     solana.PublicKey `json:"update_authority"`
	Signature           string           `json:"signature,omitempty"`
	UnsignedTransaction string           `json:"unsigned_transaction,omitempty"`
	ExplorerURL         string           `json:"explorer_url,omitempty"`
	Message             string           `json:"message"`
}

// EventView - decoded program event
type EventView struct {
	Name string            `json:"name"`
	Data cnftprogram.Event `json:"data"`
}
