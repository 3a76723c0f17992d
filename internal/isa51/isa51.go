// Package isa51 decodes 8051/8052 machine code one instruction at a time.
package isa51

import "fmt"

// Part selects the instruction table variant.
type Part int

const (
	P8051 Part = iota
	P8052
)

// Kind classifies an instruction's effect on control flow.
type Kind uint8

const (
	Fallthrough  Kind = iota // execution continues at the next instruction
	Jump                     // unconditional transfer, no fallthrough
	CondBranch               // conditional transfer, fallthrough possible
	Call                     // transfer with return to the next instruction
	Ret                      // return, no successors
	IndirectJump             // runtime-computed target (jmp @A+DPTR)
	IndirectCall             // reserved; no base-table opcode produces it
)

// OperandKind tags a decoded operand.
type OperandKind uint8

const (
	Imm    OperandKind = iota // 8-bit immediate
	Direct                    // direct RAM/SFR address
	Bit                       // bit address
	Code                      // resolved code-space address
)

// Operand is one decoded operand. Register operands are part of the
// mnemonic template and never appear here.
type Operand struct {
	Kind OperandKind
	Val  uint16
}

// Inst is one decoded instruction.
type Inst struct {
	Addr      uint16
	Len       int
	Op        byte
	Template  string // fmt template; one %s slot per operand
	Operands  []Operand
	Kind      Kind
	Target    uint16 // valid when HasTarget
	HasTarget bool
	DptrRef   bool // Code operand is a data reference (mov DPTR, #imm16)
}

// argKind is the encoding-level operand class, resolved to an
// OperandKind during decode.
type argKind uint8

const (
	argImm argKind = iota
	argDirect
	argBit
	argRel    // signed 8-bit, relative to the next instruction
	argAddr11 // page-relative, 3 bits in the opcode + 1 byte
	argAddr16 // big-endian word
)

type entry struct {
	template string
	length   int
	args     []argKind
	kind     Kind
	dptrRef  bool
	only8052 bool
}

var table = buildTable()

func buildTable() [256]*entry {
	var t [256]*entry

	add := func(op int, e entry) {
		if t[op] != nil {
			panic(fmt.Sprintf("duplicate opcode %02X", op))
		}
		t[op] = &e
	}

	// Accumulator/register groups: @R0/@R1 forms at msb|6/msb|7,
	// R0..R7 forms at msb|8..msb|F where the group has them.
	type group struct {
		msb    int
		prefix string
		suffix string
		direct bool
	}
	for _, g := range []group{
		{0x00, "inc", "", true},
		{0x10, "dec", "", true},
		{0x20, "add A,", "", true},
		{0x30, "addc A,", "", true},
		{0x40, "orl A,", "", true},
		{0x50, "anl A,", "", true},
		{0x60, "xrl A,", "", true},
		{0x90, "subb A,", "", true},
		{0xC0, "xch A,", "", true},
		{0xD0, "xchd A,", "", false},
		{0xE0, "mov A,", "", true},
		{0xF0, "mov", ", A", true},
	} {
		for reg := 0; reg < 2; reg++ {
			add(g.msb|(reg+6), entry{template: fmt.Sprintf("%s @R%d%s", g.prefix, reg, g.suffix), length: 1})
		}
		if g.direct {
			for reg := 0; reg < 8; reg++ {
				add(g.msb|(reg+8), entry{template: fmt.Sprintf("%s R%d%s", g.prefix, reg, g.suffix), length: 1})
			}
		}
	}

	// Register-indexed forms.
	for reg := 0; reg < 8; reg++ {
		add(0x78|reg, entry{template: fmt.Sprintf("mov R%d, #%%s", reg), length: 2, args: []argKind{argImm}})
		add(0x88|reg, entry{template: fmt.Sprintf("mov %%s, R%d", reg), length: 2, args: []argKind{argDirect}})
		add(0xA8|reg, entry{template: fmt.Sprintf("mov R%d, %%s", reg), length: 2, args: []argKind{argDirect}})
		add(0xB8|reg, entry{template: fmt.Sprintf("cjne R%d, #%%s, %%s", reg), length: 3, args: []argKind{argImm, argRel}, kind: CondBranch})
		add(0xD8|reg, entry{template: fmt.Sprintf("djnz R%d, %%s", reg), length: 2, args: []argKind{argRel}, kind: CondBranch})
	}

	// Page-relative jump and call, one opcode per 2K page.
	for page := 0; page < 8; page++ {
		add(0x01|(page<<5), entry{template: "ajmp %s", length: 2, args: []argKind{argAddr11}, kind: Jump})
		add(0x11|(page<<5), entry{template: "acall %s", length: 2, args: []argKind{argAddr11}, kind: Call})
	}

	add(0x00, entry{template: "nop", length: 1})
	add(0x02, entry{template: "ljmp %s", length: 3, args: []argKind{argAddr16}, kind: Jump})
	add(0x03, entry{template: "rr A", length: 1})
	add(0x04, entry{template: "inc A", length: 1})
	add(0x05, entry{template: "inc %s", length: 2, args: []argKind{argDirect}})
	add(0x10, entry{template: "jbc %s, %s", length: 3, args: []argKind{argBit, argRel}, kind: CondBranch})
	add(0x12, entry{template: "lcall %s", length: 3, args: []argKind{argAddr16}, kind: Call})
	add(0x13, entry{template: "rrc A", length: 1})
	add(0x14, entry{template: "dec A", length: 1})
	add(0x15, entry{template: "dec %s", length: 2, args: []argKind{argDirect}})
	add(0x20, entry{template: "jb %s, %s", length: 3, args: []argKind{argBit, argRel}, kind: CondBranch})
	add(0x22, entry{template: "ret", length: 1, kind: Ret})
	add(0x23, entry{template: "rl A", length: 1})
	add(0x24, entry{template: "add A, #%s", length: 2, args: []argKind{argImm}})
	add(0x25, entry{template: "add A, %s", length: 2, args: []argKind{argDirect}})
	add(0x30, entry{template: "jnb %s, %s", length: 3, args: []argKind{argBit, argRel}, kind: CondBranch})
	add(0x32, entry{template: "reti", length: 1, kind: Ret})
	add(0x33, entry{template: "rlc A", length: 1})
	add(0x34, entry{template: "addc A, #%s", length: 2, args: []argKind{argImm}})
	add(0x35, entry{template: "addc A, %s", length: 2, args: []argKind{argDirect}})
	add(0x40, entry{template: "jc %s", length: 2, args: []argKind{argRel}, kind: CondBranch})
	add(0x42, entry{template: "orl %s, A", length: 2, args: []argKind{argDirect}})
	add(0x43, entry{template: "orl %s, #%s", length: 3, args: []argKind{argDirect, argImm}})
	add(0x44, entry{template: "orl A, #%s", length: 2, args: []argKind{argImm}})
	add(0x45, entry{template: "orl A, %s", length: 2, args: []argKind{argDirect}})
	add(0x50, entry{template: "jnc %s", length: 2, args: []argKind{argRel}, kind: CondBranch})
	add(0x52, entry{template: "anl %s, A", length: 2, args: []argKind{argDirect}})
	add(0x53, entry{template: "anl %s, #%s", length: 3, args: []argKind{argDirect, argImm}})
	add(0x54, entry{template: "anl A, #%s", length: 2, args: []argKind{argImm}})
	add(0x55, entry{template: "anl A, %s", length: 2, args: []argKind{argDirect}})
	add(0x60, entry{template: "jz %s", length: 2, args: []argKind{argRel}, kind: CondBranch})
	add(0x62, entry{template: "xrl %s, A", length: 2, args: []argKind{argDirect}})
	add(0x63, entry{template: "xrl %s, #%s", length: 3, args: []argKind{argDirect, argImm}})
	add(0x64, entry{template: "xrl A, #%s", length: 2, args: []argKind{argImm}})
	add(0x65, entry{template: "xrl A, %s", length: 2, args: []argKind{argDirect}})
	add(0x70, entry{template: "jnz %s", length: 2, args: []argKind{argRel}, kind: CondBranch})
	add(0x72, entry{template: "orl C, %s", length: 2, args: []argKind{argBit}})
	add(0x73, entry{template: "jmp @A + DPTR", length: 1, kind: IndirectJump})
	add(0x74, entry{template: "mov A, #%s", length: 2, args: []argKind{argImm}})
	add(0x75, entry{template: "mov %s, #%s", length: 3, args: []argKind{argDirect, argImm}})
	add(0x76, entry{template: "mov @R0, #%s", length: 2, args: []argKind{argImm}})
	add(0x77, entry{template: "mov @R1, #%s", length: 2, args: []argKind{argImm}})
	add(0x80, entry{template: "sjmp %s", length: 2, args: []argKind{argRel}, kind: Jump})
	add(0x82, entry{template: "anl C, %s", length: 2, args: []argKind{argBit}})
	add(0x83, entry{template: "movc A, @A + PC", length: 1})
	add(0x84, entry{template: "div AB", length: 1})
	// Operand order is swapped in the assembly syntax: src is encoded first.
	add(0x85, entry{template: "mov %[2]s, %[1]s", length: 3, args: []argKind{argDirect, argDirect}})
	add(0x86, entry{template: "mov %s, @R0", length: 2, args: []argKind{argDirect}})
	add(0x87, entry{template: "mov %s, @R1", length: 2, args: []argKind{argDirect}})
	add(0x90, entry{template: "mov DPTR, #%s", length: 3, args: []argKind{argAddr16}, dptrRef: true})
	add(0x92, entry{template: "mov %s, C", length: 2, args: []argKind{argBit}})
	add(0x93, entry{template: "movc A, @A + DPTR", length: 1})
	add(0x94, entry{template: "subb A, #%s", length: 2, args: []argKind{argImm}})
	add(0x95, entry{template: "subb A, %s", length: 2, args: []argKind{argDirect}})
	add(0xA0, entry{template: "orl C, /%s", length: 2, args: []argKind{argBit}})
	add(0xA2, entry{template: "mov C, %s", length: 2, args: []argKind{argBit}})
	add(0xA3, entry{template: "inc DPTR", length: 1})
	add(0xA4, entry{template: "mul AB", length: 1})
	add(0xA5, entry{template: "dec DPTR", length: 1, only8052: true})
	add(0xA6, entry{template: "mov @R0, %s", length: 2, args: []argKind{argDirect}})
	add(0xA7, entry{template: "mov @R1, %s", length: 2, args: []argKind{argDirect}})
	add(0xB0, entry{template: "anl C, /%s", length: 2, args: []argKind{argBit}})
	add(0xB2, entry{template: "cpl %s", length: 2, args: []argKind{argBit}})
	add(0xB3, entry{template: "cpl C", length: 1})
	add(0xB4, entry{template: "cjne A, #%s, %s", length: 3, args: []argKind{argImm, argRel}, kind: CondBranch})
	add(0xB5, entry{template: "cjne A, %s, %s", length: 3, args: []argKind{argDirect, argRel}, kind: CondBranch})
	add(0xB6, entry{template: "cjne @R0, #%s, %s", length: 3, args: []argKind{argImm, argRel}, kind: CondBranch})
	add(0xB7, entry{template: "cjne @R1, #%s, %s", length: 3, args: []argKind{argImm, argRel}, kind: CondBranch})
	add(0xC0, entry{template: "push %s", length: 2, args: []argKind{argDirect}})
	add(0xC2, entry{template: "clr %s", length: 2, args: []argKind{argBit}})
	add(0xC3, entry{template: "clr C", length: 1})
	add(0xC4, entry{template: "swap A", length: 1})
	add(0xC5, entry{template: "xch A, %s", length: 2, args: []argKind{argDirect}})
	add(0xD0, entry{template: "pop %s", length: 2, args: []argKind{argDirect}})
	add(0xD2, entry{template: "setb %s", length: 2, args: []argKind{argBit}})
	add(0xD3, entry{template: "setb C", length: 1})
	add(0xD4, entry{template: "da A", length: 1})
	add(0xD5, entry{template: "djnz %s, %s", length: 3, args: []argKind{argDirect, argRel}, kind: CondBranch})
	add(0xE0, entry{template: "movx A, @DPTR", length: 1})
	add(0xE2, entry{template: "movx A, @R0", length: 1})
	add(0xE3, entry{template: "movx A, @R1", length: 1})
	add(0xE4, entry{template: "clr A", length: 1})
	add(0xE5, entry{template: "mov A, %s", length: 2, args: []argKind{argDirect}})
	add(0xF0, entry{template: "movx @DPTR, A", length: 1})
	add(0xF2, entry{template: "movx @R0, A", length: 1})
	add(0xF3, entry{template: "movx @R1, A", length: 1})
	add(0xF4, entry{template: "cpl A", length: 1})
	add(0xF5, entry{template: "mov %s, A", length: 2, args: []argKind{argDirect}})

	for op := 0; op < 256; op++ {
		if t[op] == nil {
			panic(fmt.Sprintf("missing opcode %02X", op))
		}
	}
	return t
}
