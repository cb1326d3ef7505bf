package cnftprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Invoker performs a cross-program invocation signed with the given PDA seeds
type Invoker interface {
	InvokeSigned(ctx context.Context, ix solana.Instruction, signerSeeds [][][]byte) error
}

// Emitter publishes events of a successful entry point
type Emitter interface {
	Emit(ev Event) error
}

// Program executes the two entry points of the compressed NFT wrapper
type Program struct {
	programID solana.PublicKey
	invoker   Invoker
	emitter   Emitter
	logger    *zap.Logger
}

type Option func(*Program)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Program) {
		p.logger = logger
	}
}

func WithProgramID(programID solana.PublicKey) Option {
	return func(p *Program) {
		p.programID = programID
	}
}

func New(invoker Invoker, emitter Emitter, opts ...Option) *Program {
	p := &Program{
		programID: ProgramID,
		invoker:   invoker,
		emitter:   emitter,
		logger:    zap.L(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Program) ProgramID() solana.PublicKey {
	return p.programID
}

// AnchorCreateTree creates a Bubblegum tree whose creator is the authority PDA
func (p *Program) AnchorCreateTree(
	ctx context.Context,
	accounts *AnchorCreateTreeAccounts,
	maxDepth uint32,
	maxBufferSize uint32,
) error {
	bump, err := p.validateCreateTree(accounts)
	if err != nil {
		return err
	}

	public := false
	ix, err := NewCreateTreeInstruction(
		&CreateTreeAccounts{
			TreeAuthority:      accounts.TreeAuthority.Key,
			MerkleTree:         accounts.MerkleTree.Key,
			Payer:              accounts.Payer.Key,
			TreeCreator:        accounts.PDA.Key,
			LogWrapper:         accounts.LogWrapper.Key,
			CompressionProgram: accounts.CompressionProgram.Key,
			SystemProgram:      accounts.SystemProgram.Key,
		},
		&CreateTreeArgs{
			MaxDepth:      maxDepth,
			MaxBufferSize: maxBufferSize,
			Public:        &public,
		},
	)
	if err != nil {
		return err
	}

	if err := p.invoker.InvokeSigned(ctx, ix, p.signerSeeds(bump)); err != nil {
		p.logger.Warn("create_tree cpi failed",
			zap.Stringer("merkle_tree", accounts.MerkleTree.Key),
			zap.Error(err),
		)
		return ErrCreateTreeCpiFailed
	}

	return p.emitter.Emit(&TreeCreated{
		TreeAuthority: accounts.TreeAuthority.Key,
		MerkleTree:    accounts.MerkleTree.Key,
		Payer:         accounts.Payer.Key,
	})
}

// MintCompressedNft mints a leaf into the collection with metadata copied from the collection
func (p *Program) MintCompressedNft(ctx context.Context, accounts *MintCompressedNftAccounts) error {
	bump, collection, err := p.validateMint(accounts)
	if err != nil {
		return err
	}

	metadata := BuildMetadataArgs(accounts.CollectionMint.Key, accounts.PDA.Key, collection)

	ix, err := NewMintToCollectionV1Instruction(
		&MintToCollectionV1Accounts{
			TreeAuthority:                accounts.TreeAuthority.Key,
			LeafOwner:                    accounts.Payer.Key,
			LeafDelegate:                 accounts.Payer.Key,
			MerkleTree:                   accounts.MerkleTree.Key,
			Payer:                        accounts.Payer.Key,
			TreeDelegate:                 accounts.PDA.Key,
			CollectionAuthority:          accounts.PDA.Key,
			CollectionAuthorityRecordPDA: accounts.BubblegumProgram.Key,
			CollectionMint:               accounts.CollectionMint.Key,
			CollectionMetadata:           accounts.CollectionMetadata.Key,
			EditionAccount:               accounts.EditionAccount.Key,
			BubblegumSigner:              accounts.BubblegumSigner.Key,
			LogWrapper:                   accounts.LogWrapper.Key,
			CompressionProgram:           accounts.CompressionProgram.Key,
			TokenMetadataProgram:         accounts.TokenMetadataProgram.Key,
			SystemProgram:                accounts.SystemProgram.Key,
		},
		metadata,
	)
	if err != nil {
		return err
	}

	if err := p.invoker.InvokeSigned(ctx, ix, p.signerSeeds(bump)); err != nil {
		p.logger.Warn("mint_to_collection_v1 cpi failed",
			zap.Stringer("merkle_tree", accounts.MerkleTree.Key),
			zap.Stringer("collection_mint", accounts.CollectionMint.Key),
			zap.Error(err),
		)
		return ErrMintCompressedNFTFailed
	}

	return p.emitter.Emit(&CompressedNFTMinted{
		TreeAuthority: accounts.TreeAuthority.Key,
		LeafOwner:     accounts.Payer.Key,
	})
}

func (p *Program) signerSeeds(bump uint8) [][][]byte {
	return [][][]byte{{SeedAuthority, {bump}}}
}

func (p *Program) validateCreateTree(a *AnchorCreateTreeAccounts) (uint8, error) {
	if a == nil || !complete(a.all()) {
		return 0, ErrAccountNotEnoughKeys
	}
	if err := checkSignerMut("payer", a.Payer); err != nil {
		return 0, err
	}
	bump, err := p.checkAuthority(a.PDA)
	if err != nil {
		return 0, err
	}
	if err := checkTreeAuthority(a.TreeAuthority, a.MerkleTree); err != nil {
		return 0, err
	}
	if err := checkMut("merkle_tree", a.MerkleTree); err != nil {
		return 0, err
	}
	for _, prog := range []struct {
		name string
		info *AccountInfo
		id   solana.PublicKey
	}{
		{"log_wrapper", a.LogWrapper, NoopProgramID},
		{"system_program", a.SystemProgram, SystemProgramID},
		{"bubblegum_program", a.BubblegumProgram, BubblegumProgramID},
		{"compression_program", a.CompressionProgram, AccountCompressionProgramID},
	} {
		if err := checkProgram(prog.name, prog.info, prog.id); err != nil {
			return 0, err
		}
	}
	return bump, nil
}

func (p *Program) validateMint(a *MintCompressedNftAccounts) (uint8, *CollectionMetadata, error) {
	if a == nil || !complete(a.all()) {
		return 0, nil, ErrAccountNotEnoughKeys
	}
	if err := checkSignerMut("payer", a.Payer); err != nil {
		return 0, nil, err
	}
	bump, err := p.checkAuthority(a.PDA)
	if err != nil {
		return 0, nil, err
	}
	if err := checkTreeAuthority(a.TreeAuthority, a.MerkleTree); err != nil {
		return 0, nil, err
	}
	if err := checkMut("merkle_tree", a.MerkleTree); err != nil {
		return 0, nil, err
	}

	signer, _, err := DeriveBubblegumSignerPDA()
	if err != nil {
		return 0, nil, err
	}
	if !a.BubblegumSigner.Key.Equals(signer) {
		return 0, nil, accountError("bubblegum_signer", ErrConstraintSeeds)
	}

	for _, prog := range []struct {
		name string
		info *AccountInfo
		id   solana.PublicKey
	}{
		{"log_wrapper", a.LogWrapper, NoopProgramID},
		{"compression_program", a.CompressionProgram, AccountCompressionProgramID},
		{"bubblegum_program", a.BubblegumProgram, BubblegumProgramID},
		{"token_metadata_program", a.TokenMetadataProgram, TokenMetadataProgramID},
		{"system_program", a.SystemProgram, SystemProgramID},
	} {
		if err := checkProgram(prog.name, prog.info, prog.id); err != nil {
			return 0, nil, err
		}
	}

	if _, err := readMintAccount(a.CollectionMint); err != nil {
		return 0, nil, err
	}
	collection, err := ReadCollectionMetadata(a.CollectionMetadata)
	if err != nil {
		return 0, nil, err
	}
	if err := checkMut("collection_metadata", a.CollectionMetadata); err != nil {
		return 0, nil, err
	}
	return bump, collection, nil
}

// checkAuthority matches the PDA against the canonical derivation and
// recomputes it from the resulting bump before it is used to sign.
func (p *Program) checkAuthority(info *AccountInfo) (uint8, error) {
	pda, bump, err := DeriveAuthorityPDA(p.programID)
	if err != nil {
		return 0, err
	}
	if !info.Key.Equals(pda) {
		return 0, accountError("pda", ErrConstraintSeeds)
	}
	if err := VerifyAuthorityBump(p.programID, info.Key, bump); err != nil {
		return 0, fmt.Errorf("pda: %w: %v", ErrConstraintSeeds, err)
	}
	return bump, nil
}

func complete(infos []*AccountInfo) bool {
	for _, info := range infos {
		if info == nil {
			return false
		}
	}
	return true
}

func checkTreeAuthority(treeAuthority, merkleTree *AccountInfo) error {
	if err := checkMut("tree_authority", treeAuthority); err != nil {
		return err
	}
	expected, _, err := DeriveTreeAuthorityPDA(merkleTree.Key)
	if err != nil {
		return err
	}
	if !treeAuthority.Key.Equals(expected) {
		return accountError("tree_authority", ErrConstraintSeeds)
	}
	return nil
}

func checkSignerMut(name string, info *AccountInfo) error {
	if !info.IsSigner {
		return accountError(name, ErrAccountNotSigner)
	}
	return checkMut(name, info)
}

func checkMut(name string, info *AccountInfo) error {
	if !info.IsWritable {
		return accountError(name, ErrConstraintMut)
	}
	return nil
}

func checkProgram(name string, info *AccountInfo, id solana.PublicKey) error {
	if !info.Key.Equals(id) {
		return accountError(name, ErrInvalidProgramID)
	}
	if !info.Executable {
		return accountError(name, ErrInvalidProgramExecutable)
	}
	return nil
}
