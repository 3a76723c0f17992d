package analyze

import "fmt"

// DiagKind categorizes a non-fatal finding during exploration.
type DiagKind uint8

const (
	DiagUndefinedOpcode DiagKind = iota
	DiagConflict
	DiagOutOfBounds
	DiagBadSlot // declared call-array slot does not hold a call
)

func (k DiagKind) String() string {
	switch k {
	case DiagUndefinedOpcode:
		return "undefined-opcode"
	case DiagConflict:
		return "conflict"
	case DiagOutOfBounds:
		return "out-of-bounds"
	case DiagBadSlot:
		return "bad-slot"
	}
	return fmt.Sprintf("DiagKind(%d)", uint8(k))
}

// Diag is one recovered finding. Diagnostics never abort a run; they
// are aggregated and surfaced to the caller after the fixpoint.
type Diag struct {
	Kind DiagKind
	Addr uint16
	Msg  string
}

func (d Diag) String() string {
	return fmt.Sprintf("%s at %04Xh: %s", d.Kind, d.Addr, d.Msg)
}
