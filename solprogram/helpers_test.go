package solprogram

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"compressednft/chainsol"
	"compressednft/cnftprogram"
	"compressednft/internal/rpctest"
)

type testEnv struct {
	client *Client
	srv    *rpctest.Server

	mu       sync.Mutex
	accounts map[solana.PublicKey]map[string]any
	sent     []*solana.Transaction
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := rpctest.NewServer(t)
	chain, err := chainsol.NewSolChain(context.Background(), chainsol.Config{
		RPCURL:       srv.URL(),
		Network:      "devnet",
		Logger:       zap.NewNop(),
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	client, err := NewClient(chain, DefaultProgramID.String(), zap.NewNop())
	require.NoError(t, err)

	env := &testEnv{client: client, srv: srv, accounts: map[solana.PublicKey]map[string]any{}}
	srv.Result("getLatestBlockhash", rpctest.LatestBlockhash(solana.HashFromBytes(solana.NewWallet().PublicKey().Bytes())))
	srv.Result("getMinimumBalanceForRentExemption", 1_000_000)
	srv.Handle("getAccountInfo", func(params json.RawMessage) (any, *rpctest.Error) {
		var args []json.RawMessage
		var address string
		if err := json.Unmarshal(params, &args); err != nil || len(args) == 0 || json.Unmarshal(args[0], &address) != nil {
			return nil, &rpctest.Error{Code: -32602, Message: "invalid params"}
		}
		env.mu.Lock()
		defer env.mu.Unlock()
		if account, ok := env.accounts[solana.MustPublicKeyFromBase58(address)]; ok {
			return account, nil
		}
		return rpctest.WithContext(1, nil), nil
	})
	srv.Handle("sendTransaction", func(params json.RawMessage) (any, *rpctest.Error) {
		var args []json.RawMessage
		var encoded string
		if err := json.Unmarshal(params, &args); err != nil || len(args) == 0 || json.Unmarshal(args[0], &encoded) != nil {
			return nil, &rpctest.Error{Code: -32602, Message: "invalid params"}
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &rpctest.Error{Code: -32602, Message: err.Error()}
		}
		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		if err != nil {
			return nil, &rpctest.Error{Code: -32602, Message: err.Error()}
		}
		env.mu.Lock()
		env.sent = append(env.sent, tx)
		env.mu.Unlock()
		return tx.Signatures[0].String(), nil
	})
	return env
}

func (e *testEnv) setAccount(address, owner solana.PublicKey, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accounts[address] = rpctest.Account(owner, data, false)
}

func (e *testEnv) sentTransactions() []*solana.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*solana.Transaction(nil), e.sent...)
}

// addTree stores an initialized tree account whose authority is its Bubblegum tree config
func (e *testEnv) addTree(t *testing.T, merkleTree solana.PublicKey) {
	t.Helper()
	treeAuthority, _, err := cnftprogram.DeriveTreeAuthorityPDA(merkleTree)
	require.NoError(t, err)
	e.setAccount(merkleTree, AccountCompressionProgramID, treeAccountData(t, treeAuthority, 14, 64, 9, 42))
}

// addCollection stores collection metadata whose update authority is the given key
func (e *testEnv) addCollection(t *testing.T, mint, updateAuthority solana.PublicKey) {
	t.Helper()
	metadata, _, err := cnftprogram.DeriveMetadataPDA(mint)
	require.NoError(t, err)
	e.setAccount(metadata, TokenMetadataProgramID, metadataAccountData(t, updateAuthority, mint, "Kombi", "KMB", "https://example.com/kombi.json"))
}

func treeAccountData(t *testing.T, authority solana.PublicKey, maxDepth, maxBufferSize, canopyDepth uint32, slot uint64) []byte {
	t.Helper()
	size, err := ConcurrentMerkleTreeAccountSize(maxDepth, maxBufferSize, canopyDepth)
	require.NoError(t, err)
	data := make([]byte, size)
	data[0] = CompressionAccountTypeConcurrentMerkleTree
	data[1] = ConcurrentMerkleTreeHeaderVersionV1
	binary.LittleEndian.PutUint32(data[2:6], maxBufferSize)
	binary.LittleEndian.PutUint32(data[6:10], maxDepth)
	copy(data[10:42], authority[:])
	binary.LittleEndian.PutUint64(data[42:50], slot)
	return data
}

// metadataAccountData lays out a Metaplex metadata account with the fixed-width padding
func metadataAccountData(t *testing.T, updateAuthority, mint solana.PublicKey, name, symbol, uri string) []byte {
	t.Helper()
	return metadataFixture{
		updateAuthority: updateAuthority,
		mint:            mint,
		name:            name,
		symbol:          symbol,
		uri:             uri,
		sellerFee:       500,
	}.encode(t)
}

type metadataFixture struct {
	updateAuthority solana.PublicKey
	mint            solana.PublicKey
	name            string
	symbol          string
	uri             string
	sellerFee       uint16
	creators        []cnftprogram.Creator
	tokenStandard   *cnftprogram.TokenStandard
	collectionSize  *uint64
}

func (f metadataFixture) encode(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	require.NoError(t, enc.WriteUint8(cnftprogram.MetadataKeyV1))
	require.NoError(t, enc.WriteBytes(f.updateAuthority[:], false))
	require.NoError(t, enc.WriteBytes(f.mint[:], false))
	for _, field := range []struct {
		value string
		width int
	}{{f.name, 32}, {f.symbol, 10}, {f.uri, 200}} {
		padded := append([]byte(field.value), make([]byte, field.width-len(field.value))...)
		require.NoError(t, enc.WriteUint32(uint32(len(padded)), binary.LittleEndian))
		require.NoError(t, enc.WriteBytes(padded, false))
	}
	require.NoError(t, enc.WriteUint16(f.sellerFee, binary.LittleEndian))

	require.NoError(t, enc.WriteBool(len(f.creators) > 0))
	if len(f.creators) > 0 {
		require.NoError(t, enc.WriteUint32(uint32(len(f.creators)), binary.LittleEndian))
		for _, creator := range f.creators {
			require.NoError(t, enc.WriteBytes(creator.Address[:], false))
			require.NoError(t, enc.WriteBool(creator.Verified))
			require.NoError(t, enc.WriteUint8(creator.Share))
		}
	}
	require.NoError(t, enc.WriteBool(false)) // primary_sale_happened
	require.NoError(t, enc.WriteBool(true))  // is_mutable
	require.NoError(t, enc.WriteBool(false)) // edition_nonce

	require.NoError(t, enc.WriteBool(f.tokenStandard != nil))
	if f.tokenStandard != nil {
		require.NoError(t, enc.WriteUint8(uint8(*f.tokenStandard)))
	}
	require.NoError(t, enc.WriteBool(false)) // collection
	require.NoError(t, enc.WriteBool(false)) // uses
	require.NoError(t, enc.WriteBool(f.collectionSize != nil))
	if f.collectionSize != nil {
		require.NoError(t, enc.WriteUint8(0)) // V1
		require.NoError(t, enc.WriteUint64(*f.collectionSize, binary.LittleEndian))
	}

	data := buf.Bytes()
	return append(data, make([]byte, 679-len(data))...)
}
