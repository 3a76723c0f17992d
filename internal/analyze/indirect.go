package analyze

import (
	"errors"
	"fmt"

	"dis51/internal/isa51"
)

// ErrMalformedRange rejects an indirect range before exploration
// starts. A bad range is a configuration mistake, never recovered.
var ErrMalformedRange = errors.New("analyze: malformed range")

// Range declares a region holding indirect-jump hints: either an array
// of short calls or a table of 16-bit big-endian addresses, one per
// stride-sized slot.
type Range struct {
	Start  uint16
	End    uint16 // exclusive
	Stride uint16
}

func (r Range) validate(size int) error {
	if r.End <= r.Start {
		return fmt.Errorf("%w: %04Xh:%04Xh has end <= start", ErrMalformedRange, r.Start, r.End)
	}
	if r.Stride == 0 {
		return fmt.Errorf("%w: %04Xh:%04Xh has zero stride", ErrMalformedRange, r.Start, r.End)
	}
	if int(r.End) > size {
		return fmt.Errorf("%w: %04Xh:%04Xh exceeds code space (%04Xh)", ErrMalformedRange, r.Start, r.End, size)
	}
	return nil
}

// AddCallArray declares that each slot in r begins with a call
// instruction. Every decoded call's target becomes an entry point;
// slots that do not hold a call are reported and skipped. The slot
// bytes themselves stay unconstrained.
func (x *Explorer) AddCallArray(r Range) error {
	if err := r.validate(x.m.Size()); err != nil {
		return err
	}
	for s := int(r.Start); s < int(r.End); s += int(r.Stride) {
		slot := uint16(s)
		in, err := isa51.Decode(x.mem, slot, x.opts())
		if err != nil {
			x.diag(DiagBadSlot, slot, "call-array slot does not decode: %v", err)
			continue
		}
		if in.Kind != isa51.Call {
			x.diag(DiagBadSlot, slot, "call-array slot holds %q, not a call", in.Template)
			continue
		}
		x.pushTarget(slot, in.Target, LabelJump)
		if int(in.Target) < x.m.Size() {
			x.starts[in.Target] = true
		}
		x.edges = append(x.edges, CallEdge{From: slot, To: in.Target})
	}
	return nil
}

// AddAddrTable declares that each slot in r starts with a 16-bit
// big-endian code address. The two bytes are classified as one data
// word and the value becomes an entry point.
func (x *Explorer) AddAddrTable(r Range) error {
	if err := r.validate(x.m.Size()); err != nil {
		return err
	}
	for s := int(r.Start); s < int(r.End); s += int(r.Stride) {
		slot := uint16(s)
		if int(slot)+1 >= x.m.Size() {
			x.diag(DiagOutOfBounds, slot, "address-table slot truncated")
			break
		}
		raw := uint16(x.mem[slot])<<8 | uint16(x.mem[slot+1])
		target := raw - x.cfg.Base
		if conflict := x.m.MarkWord(slot); conflict != nil {
			x.diag(DiagConflict, slot, "%v", conflict)
			continue
		}
		x.pushTarget(slot, target, LabelAddr)
		if int(target) < x.m.Size() {
			x.starts[target] = true
		}
	}
	return nil
}
