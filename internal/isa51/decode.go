package isa51

import "errors"

// Decode failures. The caller decides recovery: force sweeps fall back
// to a data byte, reachability exploration reports a conflict.
var (
	ErrUndefined = errors.New("isa51: undefined opcode")
	ErrTruncated = errors.New("isa51: instruction truncated at end of code space")
)

// Options configures decoding.
type Options struct {
	Part Part
	// Base is the load address of mem[0]. 16-bit code addresses in the
	// instruction stream are rebased so they index mem directly.
	Base uint16
}

// Decode reads exactly one instruction starting at addr. mem is the
// full code space; addr indexes it directly. Decode never mutates
// anything and never reads past the decoded instruction.
func Decode(mem []byte, addr uint16, opts Options) (Inst, error) {
	if int(addr) >= len(mem) {
		return Inst{}, ErrTruncated
	}
	op := mem[addr]
	e := table[op]
	if e.only8052 && opts.Part != P8052 {
		return Inst{}, ErrUndefined
	}
	if int(addr)+e.length > len(mem) {
		return Inst{}, ErrTruncated
	}

	in := Inst{
		Addr:     addr,
		Len:      e.length,
		Op:       op,
		Template: e.template,
		Kind:     e.kind,
		DptrRef:  e.dptrRef,
	}

	// Operand bytes follow the opcode in encoding order. All code-space
	// arithmetic wraps at 64K; bounds against the configured code-space
	// size are the explorer's concern.
	next := addr + uint16(e.length)
	pos := addr + 1
	for _, a := range e.args {
		var o Operand
		switch a {
		case argImm:
			o = Operand{Kind: Imm, Val: uint16(mem[pos])}
		case argDirect:
			o = Operand{Kind: Direct, Val: uint16(mem[pos])}
		case argBit:
			o = Operand{Kind: Bit, Val: uint16(mem[pos])}
		case argRel:
			o = Operand{Kind: Code, Val: next + uint16(int16(int8(mem[pos])))}
		case argAddr11:
			o = Operand{Kind: Code, Val: next&0xF800 | uint16(mem[pos]) | uint16(op)<<3&0x0700}
		case argAddr16:
			val := uint16(mem[pos])<<8 | uint16(mem[pos+1])
			o = Operand{Kind: Code, Val: val - opts.Base}
			pos++
		}
		pos++
		in.Operands = append(in.Operands, o)

		if o.Kind == Code && !e.dptrRef {
			switch e.kind {
			case Jump, CondBranch, Call:
				in.Target = o.Val
				in.HasTarget = true
			}
		}
	}
	return in, nil
}

// Next returns the address immediately after the instruction.
func (in Inst) Next() uint16 {
	return in.Addr + uint16(in.Len)
}
