package solprogram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSolanaError(t *testing.T) {
	tests := []struct {
		err  string
		want string
	}{
		{"custom program error: 0x1770", "CreateTreeCpiFailed - Operation Failed. Create tree CPI failed"},
		{"custom program error: 0x1771", "MintCompressedNFTFailed - Operation Failed. Mint compressed NFT CPI failed"},
		{`{"err":{"InstructionError":[0,{"Custom":2006}]}}`, "ConstraintSeeds - A seeds constraint was violated"},
		{"custom program error: 0x1f4", "Custom program error code: 500"},
		{"Blockhash not found", "Transaction expired. The blockhash is no longer valid. Please create a new transaction and try again."},
		{"Attempt to debit an account but found no record of a prior credit. insufficient funds", "Insufficient SOL balance to pay for transaction"},
		{"connection refused", "connection refused"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSolanaError(errors.New(tt.err)), tt.err)
	}
	assert.Empty(t, ParseSolanaError(nil))
}

func TestExtractErrorCode(t *testing.T) {
	code := ExtractErrorCode(errors.New(`simulation failed: {"err":{"InstructionError":[1,{"Custom":6001}]}}`))
	require.NotNil(t, code)
	assert.Equal(t, 6001, *code)

	code = ExtractErrorCode(errors.New("Program log: AnchorError occurred. Error Number: 3007."))
	require.NotNil(t, code)
	assert.Equal(t, 3007, *code)

	assert.Nil(t, ExtractErrorCode(errors.New("timeout")))
	assert.Nil(t, ExtractErrorCode(nil))
}

func TestExtractLogMessages(t *testing.T) {
	plain := errors.New("failed: Program log: Instruction: MintCompressedNft\nProgram log: Instruction: MintCompressedNft\nProgram log: done")
	assert.Equal(t, []string{"Instruction: MintCompressedNft", "done"}, ExtractLogMessages(plain))

	quoted := errors.New(`logs: ["Program log: AnchorError occurred", "Program log: Left:"]`)
	assert.Equal(t, []string{"AnchorError occurred", "Left:"}, ExtractLogMessages(quoted))

	assert.Nil(t, ExtractLogMessages(nil))
}

func TestProgramErrorsCoverCustomCodes(t *testing.T) {
	assert.Contains(t, ProgramErrors, 6000)
	assert.Contains(t, ProgramErrors, 6001)
	assert.Contains(t, ProgramErrors, 2006)
}
