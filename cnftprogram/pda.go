package cnftprogram

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeriveAuthorityPDA derives the "AUTH" PDA that signs every CPI of the program.
// It is the tree creator, tree delegate, collection authority and sole creator of minted leaves.
func DeriveAuthorityPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedAuthority,
		},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive authority PDA: %w", err)
	}
	return pda, bump, nil
}

// VerifyAuthorityBump recomputes the authority address from seed and bump and
// checks it against the supplied key.
func VerifyAuthorityBump(programID, authority solana.PublicKey, bump uint8) error {
	addr, err := solana.CreateProgramAddress(
		[][]byte{
			SeedAuthority,
			{bump},
		},
		programID,
	)
	if err != nil {
		return fmt.Errorf("failed to recompute authority PDA: %w", err)
	}
	if !addr.Equals(authority) {
		return fmt.Errorf("authority %s does not match seed and bump %d (%s)", authority, bump, addr)
	}
	return nil
}

// DeriveTreeAuthorityPDA derives the Bubblegum tree config account for a merkle tree
func DeriveTreeAuthorityPDA(merkleTree solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			merkleTree.Bytes(),
		},
		BubblegumProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive tree authority PDA: %w", err)
	}
	return pda, bump, nil
}

// DeriveBubblegumSignerPDA derives the signer Bubblegum uses when it calls token metadata
func DeriveBubblegumSignerPDA() (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedCollectionCPI,
		},
		BubblegumProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive bubblegum signer PDA: %w", err)
	}
	return pda, bump, nil
}

func DeriveMetadataPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		TokenMetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive metadata PDA: %w", err)
	}
	return pda, bump, nil
}

func DeriveMasterEditionPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
			SeedMasterEdition,
		},
		TokenMetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive master edition PDA: %w", err)
	}
	return pda, bump, nil
}
