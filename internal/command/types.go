package command

import "fmt"

// Command is one instruction fetched from the command ring.
type Command struct {
	Opcode    uint32
	HighPower bool
	// Timestamp is carried through unchanged; dispatch never reads it.
	Timestamp uint64
}

// Well-known opcodes.
const (
	OpGEMMHeavy uint32 = 0xBEFF
)

var opcodeNames = map[uint32]string{
	OpGEMMHeavy: "GEMM_HEAVY",
}

// OpcodeName returns a diagnostic label for op. Unknown opcodes render as hex.
func OpcodeName(op uint32) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", op)
}
