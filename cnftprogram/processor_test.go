package cnftprogram

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProgram(ledger *fakeBubblegum) (*Program, *LogEmitter) {
	emitter := NewLogEmitter(zap.NewNop())
	return New(ledger, emitter, WithLogger(zap.NewNop())), emitter
}

func TestAnchorCreateTree(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, emitter := newTestProgram(ledger)

	err := prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64)
	require.NoError(t, err)

	tree := ledger.trees[f.merkleTree]
	require.NotNil(t, tree)
	assert.Equal(t, uint32(14), tree.maxDepth)
	assert.Equal(t, uint32(64), tree.maxBufferSize)
	require.NotNil(t, tree.public)
	assert.False(t, *tree.public)
	assert.Equal(t, f.pda, tree.creator)

	events, err := ParseEvents(emitter.Logs())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, &TreeCreated{
		TreeAuthority: f.treeAuthority,
		MerkleTree:    f.merkleTree,
		Payer:         f.payer,
	}, events[0])
}

func TestAnchorCreateTreeSignsWithAuthoritySeeds(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, _ := newTestProgram(ledger)

	require.NoError(t, prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 5, 8))
	require.Len(t, ledger.calls, 1)

	_, bump, err := DeriveAuthorityPDA(ProgramID)
	require.NoError(t, err)
	assert.Equal(t, [][][]byte{{[]byte("AUTH"), {bump}}}, ledger.calls[0].seeds)

	metas := ledger.calls[0].ix.Accounts()
	require.Len(t, metas, 7)
	assert.Equal(t, f.treeAuthority, metas[0].PublicKey)
	assert.Equal(t, f.merkleTree, metas[1].PublicKey)
	assert.Equal(t, f.payer, metas[2].PublicKey)
	assert.Equal(t, f.pda, metas[3].PublicKey)
	assert.True(t, metas[3].IsSigner)
	assert.Equal(t, NoopProgramID, metas[4].PublicKey)
	assert.Equal(t, AccountCompressionProgramID, metas[5].PublicKey)
	assert.Equal(t, SystemProgramID, metas[6].PublicKey)
}

func TestAnchorCreateTreeCpiFailure(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, emitter := newTestProgram(ledger)

	require.NoError(t, prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64))

	// Second call hits an initialized tree
	err := prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64)
	require.ErrorIs(t, err, ErrCreateTreeCpiFailed)
	assert.Len(t, emitter.Logs(), 1)

	ledger.fail = errors.New("custom program error: 0x1")
	fresh := newFixture(t)
	ledger.signers[fresh.payer] = true
	emitted := len(emitter.Logs())
	err = prog.AnchorCreateTree(context.Background(), fresh.createTreeAccounts(), 14, 64)
	require.ErrorIs(t, err, ErrCreateTreeCpiFailed)
	assert.NotContains(t, err.Error(), "0x1")
	assert.Len(t, emitter.Logs(), emitted)
}

func TestAnchorCreateTreeAccountValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, a *AnchorCreateTreeAccounts)
		want   error
	}{
		{
			name:   "payer not signer",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) { a.Payer.IsSigner = false },
			want:   ErrAccountNotSigner,
		},
		{
			name:   "payer not writable",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) { a.Payer.IsWritable = false },
			want:   ErrConstraintMut,
		},
		{
			name: "wrong pda",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) {
				a.PDA = &AccountInfo{Key: solana.NewWallet().PublicKey()}
			},
			want: ErrConstraintSeeds,
		},
		{
			name: "tree authority of another tree",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) {
				other, _, _ := DeriveTreeAuthorityPDA(solana.NewWallet().PublicKey())
				a.TreeAuthority.Key = other
			},
			want: ErrConstraintSeeds,
		},
		{
			name:   "merkle tree read only",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) { a.MerkleTree.IsWritable = false },
			want:   ErrConstraintMut,
		},
		{
			name: "wrong log wrapper",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) {
				a.LogWrapper = program(solana.NewWallet().PublicKey())
			},
			want: ErrInvalidProgramID,
		},
		{
			name: "compression program not executable",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) {
				a.CompressionProgram.Executable = false
			},
			want: ErrInvalidProgramExecutable,
		},
		{
			name:   "missing account",
			mutate: func(_ *fixture, a *AnchorCreateTreeAccounts) { a.SystemProgram = nil },
			want:   ErrAccountNotEnoughKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ledger := newFakeBubblegum(f.payer)
			prog, emitter := newTestProgram(ledger)
			accounts := f.createTreeAccounts()
			tt.mutate(f, accounts)

			err := prog.AnchorCreateTree(context.Background(), accounts, 14, 64)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, ledger.calls)
			assert.Empty(t, emitter.Logs())
		})
	}
}

func TestMintCompressedNft(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, emitter := newTestProgram(ledger)

	require.NoError(t, prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64))
	require.NoError(t, prog.MintCompressedNft(context.Background(), f.mintAccounts(t)))

	metadata := ledger.lastMetadata(t)
	assert.Equal(t, f.name, metadata.Name)
	assert.Equal(t, f.symbol, metadata.Symbol)
	assert.Equal(t, f.uri, metadata.URI)
	assert.Equal(t, []Creator{{Address: f.pda, Verified: true, Share: 100}}, metadata.Creators)
	assert.Equal(t, &Collection{Key: f.collectionMint, Verified: false}, metadata.Collection)
	require.NotNil(t, metadata.TokenStandard)
	assert.Equal(t, TokenStandardNonFungible, *metadata.TokenStandard)
	assert.Equal(t, TokenProgramVersionOriginal, metadata.TokenProgramVersion)
	assert.True(t, metadata.PrimarySaleHappened)
	assert.True(t, metadata.IsMutable)
	assert.Nil(t, metadata.EditionNonce)
	assert.Nil(t, metadata.Uses)
	assert.Zero(t, metadata.SellerFeeBasisPoints)

	events, err := ParseEvents(emitter.Logs())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, &CompressedNFTMinted{
		TreeAuthority: f.treeAuthority,
		LeafOwner:     f.payer,
	}, events[1])
}

func TestMintCompressedNftAccountRoles(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, _ := newTestProgram(ledger)

	require.NoError(t, prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64))
	require.NoError(t, prog.MintCompressedNft(context.Background(), f.mintAccounts(t)))

	metas := ledger.calls[1].ix.Accounts()
	require.Len(t, metas, 16)
	want := []solana.PublicKey{
		f.treeAuthority,
		f.payer, // leaf owner
		f.payer, // leaf delegate
		f.merkleTree,
		f.payer,
		f.pda, // tree delegate
		f.pda, // collection authority
		BubblegumProgramID,
		f.collectionMint,
		f.metadata,
		f.edition,
		f.signer,
		NoopProgramID,
		AccountCompressionProgramID,
		TokenMetadataProgramID,
		SystemProgramID,
	}
	for i, key := range want {
		assert.Equal(t, key, metas[i].PublicKey, "account %d", i)
	}
	assert.True(t, metas[5].IsSigner)
	assert.True(t, metas[6].IsSigner)
}

func TestMintCompressedNftCpiFailure(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, emitter := newTestProgram(ledger)

	// depth 1 holds two leaves
	require.NoError(t, prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 1, 8))
	require.NoError(t, prog.MintCompressedNft(context.Background(), f.mintAccounts(t)))
	require.NoError(t, prog.MintCompressedNft(context.Background(), f.mintAccounts(t)))
	emitted := len(emitter.Logs())

	err := prog.MintCompressedNft(context.Background(), f.mintAccounts(t))
	require.ErrorIs(t, err, ErrMintCompressedNFTFailed)
	assert.Len(t, emitter.Logs(), emitted)
	assert.Len(t, ledger.trees[f.merkleTree].leaves, 2)
}

func TestMintCompressedNftWithoutTree(t *testing.T) {
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	prog, emitter := newTestProgram(ledger)

	err := prog.MintCompressedNft(context.Background(), f.mintAccounts(t))
	require.ErrorIs(t, err, ErrMintCompressedNFTFailed)
	assert.Empty(t, emitter.Logs())
}

func TestMintCompressedNftAccountValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, a *MintCompressedNftAccounts)
		want   error
	}{
		{
			name: "wrong bubblegum signer",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.BubblegumSigner.Key = solana.NewWallet().PublicKey()
			},
			want: ErrConstraintSeeds,
		},
		{
			name: "wrong token metadata program",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.TokenMetadataProgram = program(TokenProgramID)
			},
			want: ErrInvalidProgramID,
		},
		{
			name: "collection mint not a token mint",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.CollectionMint.Owner = SystemProgramID
			},
			want: ErrAccountOwnedByWrongProgram,
		},
		{
			name: "collection mint uninitialized",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.CollectionMint.Data = make([]byte, MintAccountSize)
			},
			want: ErrAccountDidNotDeserialize,
		},
		{
			name: "metadata owned by wrong program",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.CollectionMetadata.Owner = TokenProgramID
			},
			want: ErrAccountOwnedByWrongProgram,
		},
		{
			name: "metadata truncated",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.CollectionMetadata.Data = a.CollectionMetadata.Data[:40]
			},
			want: ErrAccountDidNotDeserialize,
		},
		{
			name: "metadata read only",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) {
				a.CollectionMetadata.IsWritable = false
			},
			want: ErrConstraintMut,
		},
		{
			name:   "missing edition",
			mutate: func(_ *fixture, a *MintCompressedNftAccounts) { a.EditionAccount = nil },
			want:   ErrAccountNotEnoughKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ledger := newFakeBubblegum(f.payer)
			prog, emitter := newTestProgram(ledger)
			accounts := f.mintAccounts(t)
			tt.mutate(f, accounts)

			err := prog.MintCompressedNft(context.Background(), accounts)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, ledger.calls)
			assert.Empty(t, emitter.Logs())
		})
	}
}

func TestProgramIDOption(t *testing.T) {
	other := solana.NewWallet().PublicKey()
	f := newFixture(t)
	ledger := newFakeBubblegum(f.payer)
	ledger.caller = other
	prog := New(ledger, NewLogEmitter(zap.NewNop()), WithProgramID(other), WithLogger(zap.NewNop()))
	assert.Equal(t, other, prog.ProgramID())

	// The AUTH PDA of the default program id is not valid under another id
	err := prog.AnchorCreateTree(context.Background(), f.createTreeAccounts(), 14, 64)
	require.ErrorIs(t, err, ErrConstraintSeeds)

	accounts := f.createTreeAccounts()
	accounts.PDA.Key, _, _ = DeriveAuthorityPDA(other)
	require.NoError(t, prog.AnchorCreateTree(context.Background(), accounts, 14, 64))
	assert.Equal(t, accounts.PDA.Key, ledger.trees[f.merkleTree].creator)
}
