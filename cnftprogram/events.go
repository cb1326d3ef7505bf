package cnftprogram

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ProgramDataPrefix is how the runtime renders sol_log_data in transaction logs
const ProgramDataPrefix = "Program data: "

// Event is a notification emitted by an entry point
type Event interface {
	EventName() string
	bin.BinaryMarshaler
	bin.BinaryUnmarshaler
}

// Event discriminators
var (
	TreeCreatedDiscriminator         = AnchorDiscriminator("event", "TreeCreated")
	CompressedNFTMintedDiscriminator = AnchorDiscriminator("event", "CompressedNFTMinted")
)

// TreeCreated - emitted by anchor_create_tree
type TreeCreated struct {
	TreeAuthority solana.PublicKey `json:"tree_authority"`
	MerkleTree    solana.PublicKey `json:"merkle_tree"`
	Payer         solana.PublicKey `json:"payer"`
}

func (*TreeCreated) EventName() string { return "TreeCreated" }

func (e *TreeCreated) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, k := range []solana.PublicKey{e.TreeAuthority, e.MerkleTree, e.Payer} {
		if err := enc.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	return nil
}

func (e *TreeCreated) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if e.TreeAuthority, err = readPublicKey(dec); err != nil {
		return err
	}
	if e.MerkleTree, err = readPublicKey(dec); err != nil {
		return err
	}
	e.Payer, err = readPublicKey(dec)
	return err
}

// CompressedNFTMinted - emitted by mint_compressed_nft
type CompressedNFTMinted struct {
	TreeAuthority solana.PublicKey `json:"tree_authority"`
	LeafOwner     solana.PublicKey `json:"leaf_owner"`
}

func (*CompressedNFTMinted) EventName() string { return "CompressedNFTMinted" }

func (e *CompressedNFTMinted) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(e.TreeAuthority[:], false); err != nil {
		return err
	}
	return enc.WriteBytes(e.LeafOwner[:], false)
}

func (e *CompressedNFTMinted) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if e.TreeAuthority, err = readPublicKey(dec); err != nil {
		return err
	}
	e.LeafOwner, err = readPublicKey(dec)
	return err
}

func eventDiscriminator(ev Event) ([8]byte, error) {
	switch ev.(type) {
	case *TreeCreated:
		return TreeCreatedDiscriminator, nil
	case *CompressedNFTMinted:
		return CompressedNFTMintedDiscriminator, nil
	}
	return [8]byte{}, fmt.Errorf("unknown event %s", ev.EventName())
}

// EncodeEvent serializes an event as discriminator + borsh body
func EncodeEvent(ev Event) ([]byte, error) {
	disc, err := eventDiscriminator(ev)
	if err != nil {
		return nil, err
	}
	return encodeInstruction(disc, ev)
}

// DecodeEvent reverses EncodeEvent. Returns nil, nil for events of other programs.
func DecodeEvent(data []byte) (Event, error) {
	if len(data) < 8 {
		return nil, nil
	}
	var ev Event
	switch {
	case bytes.Equal(data[:8], TreeCreatedDiscriminator[:]):
		ev = &TreeCreated{}
	case bytes.Equal(data[:8], CompressedNFTMintedDiscriminator[:]):
		ev = &CompressedNFTMinted{}
	default:
		return nil, nil
	}
	if err := ev.UnmarshalWithDecoder(bin.NewBorshDecoder(data[8:])); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ev.EventName(), err)
	}
	return ev, nil
}

// ParseEvents extracts the program's events from every "Program data" line.
// Lines that are not base64 or carry another program's discriminator are skipped.
func ParseEvents(logs []string) ([]Event, error) {
	var events []Event
	for _, line := range logs {
		ev, err := parseDataLine(line)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events, nil
}

// ParseProgramEvents extracts the events logged while programID is the executing program.
// Data lines inside the frames of other programs, including CPIs made by this one, are ignored.
func ParseProgramEvents(programID solana.PublicKey, logs []string) ([]Event, error) {
	id := programID.String()
	var (
		stack  []string
		events []Event
	)
	for _, line := range logs {
		if strings.HasPrefix(line, ProgramDataPrefix) {
			if len(stack) == 0 || stack[len(stack)-1] != id {
				continue
			}
			ev, err := parseDataLine(line)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				events = append(events, ev)
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "Program" {
			continue
		}
		switch fields[2] {
		case "invoke":
			stack = append(stack, fields[1])
		case "success", "failed:":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return events, nil
}

// parseDataLine decodes the first base64 chunk of a "Program data" line.
// sol_log_data renders each field as its own space separated chunk; emit! logs one.
func parseDataLine(line string) (Event, error) {
	payload, ok := strings.CutPrefix(line, ProgramDataPrefix)
	if !ok {
		return nil, nil
	}
	chunks := strings.Fields(payload)
	if len(chunks) == 0 {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(chunks[0])
	if err != nil {
		return nil, nil
	}
	return DecodeEvent(data)
}

// LogEmitter renders events the way emit! does and keeps the resulting log lines
type LogEmitter struct {
	logs   []string
	logger *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	if logger == nil {
		logger = zap.L()
	}
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ev Event) error {
	data, err := EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	e.logs = append(e.logs, ProgramDataPrefix+base64.StdEncoding.EncodeToString(data))
	e.logger.Info("event emitted", zap.String("event", ev.EventName()), zap.Any("data", ev))
	return nil
}

// Logs returns the emitted "Program data" lines
func (e *LogEmitter) Logs() []string {
	return e.logs
}
