package cnftprogram

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

const metadataAccountSize = 679

// Metaplex stores name/symbol/uri right padded with zero bytes
func padded(s string, n int) string {
	return s + strings.Repeat("\x00", n-len(s))
}

func metadataAccountData(t *testing.T, updateAuthority, mint solana.PublicKey, name, symbol, uri string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	require.NoError(t, enc.WriteUint8(4)) // Key::MetadataV1
	require.NoError(t, enc.WriteBytes(updateAuthority[:], false))
	require.NoError(t, enc.WriteBytes(mint[:], false))
	require.NoError(t, writeString(enc, name))
	require.NoError(t, writeString(enc, symbol))
	require.NoError(t, writeString(enc, uri))
	require.NoError(t, enc.WriteUint16(0, binary.LittleEndian))
	require.NoError(t, enc.WriteBool(false)) // creators: None
	require.NoError(t, enc.WriteBool(false)) // primary_sale_happened
	require.NoError(t, enc.WriteBool(true))  // is_mutable

	data := buf.Bytes()
	require.LessOrEqual(t, len(data), metadataAccountSize)
	return append(data, make([]byte, metadataAccountSize-len(data))...)
}

func mintAccountData(authority solana.PublicKey) []byte {
	data := make([]byte, MintAccountSize)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority[:])
	data[44] = 0 // decimals
	data[45] = 1 // is_initialized
	return data
}

func program(key solana.PublicKey) *AccountInfo {
	return &AccountInfo{Key: key, Executable: true}
}

type fixture struct {
	payer          solana.PublicKey
	pda            solana.PublicKey
	merkleTree     solana.PublicKey
	treeAuthority  solana.PublicKey
	collectionMint solana.PublicKey
	metadata       solana.PublicKey
	edition        solana.PublicKey
	signer         solana.PublicKey
	name           string
	symbol         string
	uri            string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payer:          solana.NewWallet().PublicKey(),
		merkleTree:     solana.NewWallet().PublicKey(),
		collectionMint: solana.NewWallet().PublicKey(),
		name:           padded("Kombi", 32),
		symbol:         padded("KMB", 10),
		uri:            padded("https://raw.githubusercontent.com/687c/solana-nft-native-client/main/metadata.json", 200),
	}
	var err error
	f.pda, _, err = DeriveAuthorityPDA(ProgramID)
	require.NoError(t, err)
	f.treeAuthority, _, err = DeriveTreeAuthorityPDA(f.merkleTree)
	require.NoError(t, err)
	f.metadata, _, err = DeriveMetadataPDA(f.collectionMint)
	require.NoError(t, err)
	f.edition, _, err = DeriveMasterEditionPDA(f.collectionMint)
	require.NoError(t, err)
	f.signer, _, err = DeriveBubblegumSignerPDA()
	require.NoError(t, err)
	return f
}

func (f *fixture) createTreeAccounts() *AnchorCreateTreeAccounts {
	return &AnchorCreateTreeAccounts{
		Payer:              &AccountInfo{Key: f.payer, Owner: SystemProgramID, IsSigner: true, IsWritable: true},
		PDA:                &AccountInfo{Key: f.pda, Owner: SystemProgramID},
		TreeAuthority:      &AccountInfo{Key: f.treeAuthority, Owner: SystemProgramID, IsWritable: true},
		MerkleTree:         &AccountInfo{Key: f.merkleTree, Owner: AccountCompressionProgramID, IsWritable: true},
		LogWrapper:         program(NoopProgramID),
		SystemProgram:      program(SystemProgramID),
		BubblegumProgram:   program(BubblegumProgramID),
		CompressionProgram: program(AccountCompressionProgramID),
	}
}

func (f *fixture) mintAccounts(t *testing.T) *MintCompressedNftAccounts {
	return &MintCompressedNftAccounts{
		Payer:                &AccountInfo{Key: f.payer, Owner: SystemProgramID, IsSigner: true, IsWritable: true},
		PDA:                  &AccountInfo{Key: f.pda, Owner: SystemProgramID},
		TreeAuthority:        &AccountInfo{Key: f.treeAuthority, Owner: BubblegumProgramID, IsWritable: true},
		MerkleTree:           &AccountInfo{Key: f.merkleTree, Owner: AccountCompressionProgramID, IsWritable: true},
		BubblegumSigner:      &AccountInfo{Key: f.signer, Owner: SystemProgramID},
		LogWrapper:           program(NoopProgramID),
		CompressionProgram:   program(AccountCompressionProgramID),
		BubblegumProgram:     program(BubblegumProgramID),
		TokenMetadataProgram: program(TokenMetadataProgramID),
		SystemProgram:        program(SystemProgramID),
		CollectionMint: &AccountInfo{
			Key:   f.collectionMint,
			Owner: TokenProgramID,
			Data:  mintAccountData(f.pda),
		},
		CollectionMetadata: &AccountInfo{
			Key:        f.metadata,
			Owner:      TokenMetadataProgramID,
			Data:       metadataAccountData(t, f.pda, f.collectionMint, f.name, f.symbol, f.uri),
			IsWritable: true,
		},
		EditionAccount: &AccountInfo{Key: f.edition, Owner: TokenMetadataProgramID},
	}
}

type invocation struct {
	ix    solana.Instruction
	seeds [][][]byte
}

type fakeTree struct {
	maxDepth      uint32
	maxBufferSize uint32
	public        *bool
	creator       solana.PublicKey
	leaves        []MetadataArgs
}

// fakeBubblegum stands in for the runtime plus the Bubblegum program.
// Signer metas must be outer signers or PDAs of the caller derived from the signer seeds.
type fakeBubblegum struct {
	caller  solana.PublicKey
	signers map[solana.PublicKey]bool
	trees   map[solana.PublicKey]*fakeTree
	calls   []invocation
	fail    error
}

func newFakeBubblegum(signers ...solana.PublicKey) *fakeBubblegum {
	f := &fakeBubblegum{
		caller:  ProgramID,
		signers: map[solana.PublicKey]bool{},
		trees:   map[solana.PublicKey]*fakeTree{},
	}
	for _, s := range signers {
		f.signers[s] = true
	}
	return f
}

func (f *fakeBubblegum) InvokeSigned(_ context.Context, ix solana.Instruction, seeds [][][]byte) error {
	f.calls = append(f.calls, invocation{ix: ix, seeds: seeds})
	if f.fail != nil {
		return f.fail
	}
	if !ix.ProgramID().Equals(BubblegumProgramID) {
		return fmt.Errorf("unexpected program %s", ix.ProgramID())
	}

	pdaSigners := map[solana.PublicKey]bool{}
	for _, seedSet := range seeds {
		addr, err := solana.CreateProgramAddress(seedSet, f.caller)
		if err != nil {
			return err
		}
		pdaSigners[addr] = true
	}
	accounts := ix.Accounts()
	for _, meta := range accounts {
		if meta.IsSigner && !f.signers[meta.PublicKey] && !pdaSigners[meta.PublicKey] {
			return fmt.Errorf("missing signature for %s", meta.PublicKey)
		}
	}

	data, err := ix.Data()
	if err != nil {
		return err
	}
	if len(data) < 8 {
		return errors.New("instruction data too short")
	}
	dec := bin.NewBorshDecoder(data[8:])

	switch {
	case bytes.Equal(data[:8], CreateTreeDiscriminator[:]):
		var args CreateTreeArgs
		if err := args.UnmarshalWithDecoder(dec); err != nil {
			return err
		}
		merkleTree := accounts[1].PublicKey
		if _, ok := f.trees[merkleTree]; ok {
			return errors.New("tree already initialized")
		}
		f.trees[merkleTree] = &fakeTree{
			maxDepth:      args.MaxDepth,
			maxBufferSize: args.MaxBufferSize,
			public:        args.Public,
			creator:       accounts[3].PublicKey,
		}
		return nil

	case bytes.Equal(data[:8], MintToCollectionV1Discriminator[:]):
		var args MetadataArgs
		if err := args.UnmarshalWithDecoder(dec); err != nil {
			return err
		}
		tree, ok := f.trees[accounts[3].PublicKey]
		if !ok {
			return errors.New("tree not initialized")
		}
		if !tree.creator.Equals(accounts[5].PublicKey) {
			return errors.New("tree delegate mismatch")
		}
		if uint64(len(tree.leaves)) >= uint64(1)<<tree.maxDepth {
			return errors.New("tree is full")
		}
		tree.leaves = append(tree.leaves, args)
		return nil
	}
	return errors.New("unknown instruction")
}

// lastMetadata decodes the MetadataArgs of the most recent call
func (f *fakeBubblegum) lastMetadata(t *testing.T) *MetadataArgs {
	t.Helper()
	require.NotEmpty(t, f.calls)
	data, err := f.calls[len(f.calls)-1].ix.Data()
	require.NoError(t, err)
	require.Equal(t, MintToCollectionV1Discriminator[:], data[:8])
	var args MetadataArgs
	require.NoError(t, args.UnmarshalWithDecoder(bin.NewBorshDecoder(data[8:])))
	return &args
}
