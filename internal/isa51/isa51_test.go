package isa51

import (
	"errors"
	"testing"
)

func decode(t *testing.T, mem []byte, addr uint16, opts Options) Inst {
	t.Helper()
	in, err := Decode(mem, addr, opts)
	if err != nil {
		t.Fatalf("Decode(%04X) failed: %v", addr, err)
	}
	return in
}

func TestDecodeLJMP(t *testing.T) {
	in := decode(t, []byte{0x02, 0x30, 0x65}, 0, Options{})
	if in.Len != 3 {
		t.Fatalf("len = %d, want 3", in.Len)
	}
	if in.Kind != Jump {
		t.Errorf("kind = %d, want Jump", in.Kind)
	}
	if !in.HasTarget || in.Target != 0x3065 {
		t.Errorf("target = %04X (has=%v), want 3065", in.Target, in.HasTarget)
	}
}

func TestDecodeAJMPPageBits(t *testing.T) {
	// ajmp opcodes carry the top 3 target bits in the opcode itself:
	// page 1 is encoded as 0x21.
	in := decode(t, []byte{0x21, 0x23}, 0, Options{})
	if in.Kind != Jump {
		t.Fatalf("kind = %d, want Jump", in.Kind)
	}
	// next = 0x0002; target = next&F800 | (0x21<<3)&0700 | 0x23
	if in.Target != 0x0123 {
		t.Errorf("target = %04X, want 0123", in.Target)
	}
}

func TestDecodeACALL(t *testing.T) {
	in := decode(t, []byte{0x11, 0x40}, 0, Options{})
	if in.Kind != Call {
		t.Fatalf("kind = %d, want Call", in.Kind)
	}
	if in.Target != 0x0040 {
		t.Errorf("target = %04X, want 0040", in.Target)
	}
}

func TestDecodeRelBackward(t *testing.T) {
	// sjmp -2 lands on its own first byte.
	in := decode(t, []byte{0x80, 0xFE}, 0, Options{})
	if in.Target != 0x0000 {
		t.Errorf("target = %04X, want 0000", in.Target)
	}
}

func TestDecodeRelWraps(t *testing.T) {
	// A backward branch from address 0 wraps around the 64K space.
	in := decode(t, []byte{0x80, 0xF0}, 0, Options{})
	if in.Target != 0xFFF2 {
		t.Errorf("target = %04X, want FFF2", in.Target)
	}
}

func TestDecodeCJNE(t *testing.T) {
	in := decode(t, []byte{0xB4, 0x12, 0x05}, 0, Options{})
	if in.Kind != CondBranch {
		t.Fatalf("kind = %d, want CondBranch", in.Kind)
	}
	if len(in.Operands) != 2 {
		t.Fatalf("operands = %d, want 2", len(in.Operands))
	}
	if in.Operands[0].Kind != Imm || in.Operands[0].Val != 0x12 {
		t.Errorf("operand 0 = %+v, want Imm 12", in.Operands[0])
	}
	if in.Target != 0x0008 {
		t.Errorf("target = %04X, want 0008", in.Target)
	}
}

func TestDecodeMovDPTR(t *testing.T) {
	in := decode(t, []byte{0x90, 0x12, 0x34}, 0, Options{})
	if in.Kind != Fallthrough {
		t.Errorf("kind = %d, want Fallthrough", in.Kind)
	}
	if !in.DptrRef {
		t.Error("DptrRef not set")
	}
	if in.HasTarget {
		t.Error("a DPTR load is not a control-flow target")
	}
	if in.Operands[0].Val != 0x1234 {
		t.Errorf("operand = %04X, want 1234", in.Operands[0].Val)
	}
}

func TestDecodeBaseRebasesAddr16(t *testing.T) {
	in := decode(t, []byte{0x90, 0x12, 0x34}, 0, Options{Base: 0x1000})
	if in.Operands[0].Val != 0x0234 {
		t.Errorf("operand = %04X, want 0234", in.Operands[0].Val)
	}
}

func TestDecodeBit(t *testing.T) {
	in := decode(t, []byte{0xD2, 0x88}, 0, Options{})
	if in.Operands[0].Kind != Bit || in.Operands[0].Val != 0x88 {
		t.Errorf("operand = %+v, want Bit 88", in.Operands[0])
	}
}

func TestDecodeReservedOpcode(t *testing.T) {
	mem := []byte{0xA5}
	if _, err := Decode(mem, 0, Options{Part: P8051}); !errors.Is(err, ErrUndefined) {
		t.Errorf("8051: err = %v, want ErrUndefined", err)
	}
	in, err := Decode(mem, 0, Options{Part: P8052})
	if err != nil {
		t.Fatalf("8052: %v", err)
	}
	if in.Template != "dec DPTR" {
		t.Errorf("8052 template = %q, want dec DPTR", in.Template)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode([]byte{0x02, 0x00}, 0, Options{}); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
	if _, err := Decode([]byte{0x00}, 1, Options{}); !errors.Is(err, ErrTruncated) {
		t.Errorf("past end: err = %v, want ErrTruncated", err)
	}
}

func TestTableCoversAllOpcodes(t *testing.T) {
	// Every opcode decodes on the 8052; only 0xA5 is reserved on the
	// 8051. Lengths must stay within the 1..3 byte encoding.
	mem := []byte{0x00, 0x00, 0x00}
	for op := 0; op < 256; op++ {
		mem[0] = byte(op)
		in, err := Decode(mem, 0, Options{Part: P8052})
		if err != nil {
			t.Fatalf("opcode %02X: %v", op, err)
		}
		if in.Len < 1 || in.Len > 3 {
			t.Errorf("opcode %02X: len = %d", op, in.Len)
		}
	}
}

func TestDecodeMovDirectDirect(t *testing.T) {
	// 0x85 encodes src first but displays dst first.
	in := decode(t, []byte{0x85, 0x30, 0x31}, 0, Options{})
	if in.Operands[0].Val != 0x30 || in.Operands[1].Val != 0x31 {
		t.Errorf("operands = %+v", in.Operands)
	}
	if in.Template != "mov %[2]s, %[1]s" {
		t.Errorf("template = %q", in.Template)
	}
}
