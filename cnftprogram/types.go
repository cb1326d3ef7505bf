package cnftprogram

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// AccountInfo is an account as handed to an entry point by the runtime
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// AnchorCreateTreeAccounts - accounts of anchor_create_tree, in instruction order
type AnchorCreateTreeAccounts struct {
	Payer              *AccountInfo
	PDA                *AccountInfo
	TreeAuthority      *AccountInfo
	MerkleTree         *AccountInfo
	LogWrapper         *AccountInfo
	SystemProgram      *AccountInfo
	BubblegumProgram   *AccountInfo
	CompressionProgram *AccountInfo
}

func (a *AnchorCreateTreeAccounts) all() []*AccountInfo {
	return []*AccountInfo{
		a.Payer, a.PDA, a.TreeAuthority, a.MerkleTree,
		a.LogWrapper, a.SystemProgram, a.BubblegumProgram, a.CompressionProgram,
	}
}

// MintCompressedNftAccounts - accounts of mint_compressed_nft, in instruction order
type MintCompressedNftAccounts struct {
	Payer                *AccountInfo
	PDA                  *AccountInfo
	TreeAuthority        *AccountInfo
	MerkleTree           *AccountInfo
	BubblegumSigner      *AccountInfo
	LogWrapper           *AccountInfo
	CompressionProgram   *AccountInfo
	BubblegumProgram     *AccountInfo
	TokenMetadataProgram *AccountInfo
	SystemProgram        *AccountInfo
	CollectionMint       *AccountInfo
	CollectionMetadata   *AccountInfo
	EditionAccount       *AccountInfo
}

func (a *MintCompressedNftAccounts) all() []*AccountInfo {
	return []*AccountInfo{
		a.Payer, a.PDA, a.TreeAuthority, a.MerkleTree, a.BubblegumSigner,
		a.LogWrapper, a.CompressionProgram, a.BubblegumProgram, a.TokenMetadataProgram, a.SystemProgram,
		a.CollectionMint, a.CollectionMetadata, a.EditionAccount,
	}
}

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// MetadataArgs - leaf metadata passed to Bubblegum (metaplex_adapter layout)
type MetadataArgs struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	TokenProgramVersion  TokenProgramVersion
	Creators             []Creator
}

func (m *MetadataArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, s := range []string{m.Name, m.Symbol, m.URI} {
		if err := writeString(enc, s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(m.SellerFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteBool(m.PrimarySaleHappened); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsMutable); err != nil {
		return err
	}

	if err := writeOption(enc, m.EditionNonce != nil); err != nil {
		return err
	}
	if m.EditionNonce != nil {
		if err := enc.WriteUint8(*m.EditionNonce); err != nil {
			return err
		}
	}

	if err := writeOption(enc, m.TokenStandard != nil); err != nil {
		return err
	}
	if m.TokenStandard != nil {
		if err := enc.WriteUint8(uint8(*m.TokenStandard)); err != nil {
			return err
		}
	}

	if err := writeOption(enc, m.Collection != nil); err != nil {
		return err
	}
	if m.Collection != nil {
		if err := enc.WriteBool(m.Collection.Verified); err != nil {
			return err
		}
		if err := enc.WriteBytes(m.Collection.Key[:], false); err != nil {
			return err
		}
	}

	if err := writeOption(enc, m.Uses != nil); err != nil {
		return err
	}
	if m.Uses != nil {
		if err := enc.WriteUint8(uint8(m.Uses.UseMethod)); err != nil {
			return err
		}
		if err := enc.WriteUint64(m.Uses.Remaining, binary.LittleEndian); err != nil {
			return err
		}
		if err := enc.WriteUint64(m.Uses.Total, binary.LittleEndian); err != nil {
			return err
		}
	}

	if err := enc.WriteUint8(uint8(m.TokenProgramVersion)); err != nil {
		return err
	}

	if err := enc.WriteUint32(uint32(len(m.Creators)), binary.LittleEndian); err != nil {
		return err
	}
	for _, c := range m.Creators {
		if err := enc.WriteBytes(c.Address[:], false); err != nil {
			return err
		}
		if err := enc.WriteBool(c.Verified); err != nil {
			return err
		}
		if err := enc.WriteUint8(c.Share); err != nil {
			return err
		}
	}
	return nil
}

func (m *MetadataArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if m.Name, err = readString(dec); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if m.Symbol, err = readString(dec); err != nil {
		return fmt.Errorf("symbol: %w", err)
	}
	if m.URI, err = readString(dec); err != nil {
		return fmt.Errorf("uri: %w", err)
	}
	if m.SellerFeeBasisPoints, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if m.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return err
	}
	if m.IsMutable, err = dec.ReadBool(); err != nil {
		return err
	}

	some, err := dec.ReadBool()
	if err != nil {
		return err
	}
	if some {
		nonce, err := dec.ReadUint8()
		if err != nil {
			return err
		}
		m.EditionNonce = &nonce
	}

	if some, err = dec.ReadBool(); err != nil {
		return err
	}
	if some {
		v, err := dec.ReadUint8()
		if err != nil {
			return err
		}
		standard := TokenStandard(v)
		m.TokenStandard = &standard
	}

	if some, err = dec.ReadBool(); err != nil {
		return err
	}
	if some {
		var c Collection
		if c.Verified, err = dec.ReadBool(); err != nil {
			return err
		}
		if c.Key, err = readPublicKey(dec); err != nil {
			return err
		}
		m.Collection = &c
	}

	if some, err = dec.ReadBool(); err != nil {
		return err
	}
	if some {
		var u Uses
		method, err := dec.ReadUint8()
		if err != nil {
			return err
		}
		u.UseMethod = UseMethod(method)
		if u.Remaining, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
		if u.Total, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
		m.Uses = &u
	}

	version, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	m.TokenProgramVersion = TokenProgramVersion(version)

	count, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	m.Creators = make([]Creator, 0, count)
	for i := uint32(0); i < count; i++ {
		var c Creator
		if c.Address, err = readPublicKey(dec); err != nil {
			return fmt.Errorf("creator %d: %w", i, err)
		}
		if c.Verified, err = dec.ReadBool(); err != nil {
			return fmt.Errorf("creator %d: %w", i, err)
		}
		if c.Share, err = dec.ReadUint8(); err != nil {
			return fmt.Errorf("creator %d: %w", i, err)
		}
		m.Creators = append(m.Creators, c)
	}
	return nil
}
