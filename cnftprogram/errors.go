package cnftprogram

import "fmt"

// ProgramError is an error surfaced by the program with its on-chain code
type ProgramError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// Custom program errors, numbered from the Anchor user error offset
var (
	ErrCreateTreeCpiFailed = &ProgramError{
		Code: 6000,
		Name: "CreateTreeCpiFailed",
		Msg:  "Operation Failed. Create tree CPI failed",
	}
	ErrMintCompressedNFTFailed = &ProgramError{
		Code: 6001,
		Name: "MintCompressedNFTFailed",
		Msg:  "Operation Failed. Mint compressed NFT CPI failed",
	}
)

// Framework account constraint errors
var (
	ErrConstraintMut = &ProgramError{
		Code: 2000,
		Name: "ConstraintMut",
		Msg:  "A mut constraint was violated",
	}
	ErrConstraintSeeds = &ProgramError{
		Code: 2006,
		Name: "ConstraintSeeds",
		Msg:  "A seeds constraint was violated",
	}
	ErrAccountDidNotDeserialize = &ProgramError{
		Code: 3003,
		Name: "AccountDidNotDeserialize",
		Msg:  "Failed to deserialize the account",
	}
	ErrAccountNotEnoughKeys = &ProgramError{
		Code: 3005,
		Name: "AccountNotEnoughKeys",
		Msg:  "Not enough account keys given to the instruction",
	}
	ErrAccountOwnedByWrongProgram = &ProgramError{
		Code: 3007,
		Name: "AccountOwnedByWrongProgram",
		Msg:  "The given account is owned by a different program than expected",
	}
	ErrInvalidProgramID = &ProgramError{
		Code: 3008,
		Name: "InvalidProgramId",
		Msg:  "Program ID was not as expected",
	}
	ErrInvalidProgramExecutable = &ProgramError{
		Code: 3009,
		Name: "InvalidProgramExecutable",
		Msg:  "Program account is not executable",
	}
	ErrAccountNotSigner = &ProgramError{
		Code: 3010,
		Name: "AccountNotSigner",
		Msg:  "The given account did not sign",
	}
)

// Errors lists every error the program can return, keyed by code
var Errors = map[uint32]*ProgramError{}

func init() {
	for _, e := range []*ProgramError{
		ErrCreateTreeCpiFailed,
		ErrMintCompressedNFTFailed,
		ErrConstraintMut,
		ErrConstraintSeeds,
		ErrAccountDidNotDeserialize,
		ErrAccountNotEnoughKeys,
		ErrAccountOwnedByWrongProgram,
		ErrInvalidProgramID,
		ErrInvalidProgramExecutable,
		ErrAccountNotSigner,
	} {
		Errors[e.Code] = e
	}
}

// accountError tags a constraint error with the account that violated it
func accountError(account string, err *ProgramError) error {
	return fmt.Errorf("%s: %w", account, err)
}
