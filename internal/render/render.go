// Package render turns a frozen classification map into assembly text.
// The output is meant to re-assemble to the original bytes over the
// classified range.
package render

import (
	"fmt"
	"strings"

	"dis51/internal/analyze"
	"dis51/internal/isa51"
	"dis51/internal/symtab"
)

// Options controls rendering.
type Options struct {
	// SkipBlank suppresses unlabeled data runs consisting entirely of
	// 0xFF (unprogrammed flash). Breaks byte-for-byte round-trip over
	// the skipped runs, so it is off by default.
	SkipBlank bool
}

// Render walks the code space in address order and emits one line per
// instruction or data cell, with labels, org directives, and value
// hints. Returned warnings cover symbol-table gaps (unknown SFRs);
// they never abort rendering.
func Render(mem []byte, res *analyze.Result, tab *symtab.Table, opts Options) (string, []string) {
	r := &renderer{
		mem:   mem,
		res:   res,
		tab:   tab,
		opts:  opts,
		names: Names(res, tab),
		seen:  make(map[uint16]bool),
	}
	r.run()
	return r.b.String(), r.warns
}

type renderer struct {
	mem   []byte
	res   *analyze.Result
	tab   *symtab.Table
	opts  Options
	names map[uint16]string
	seen  map[uint16]bool // SFRs already warned about
	b     strings.Builder
	warns []string
	gap   bool // previous line does not end right before the cursor
}

func (r *renderer) run() {
	m := r.res.Map
	size := m.Size()

	for pc := 0; pc < size; {
		addr := uint16(pc)

		if r.opts.SkipBlank {
			if end := r.blankRun(addr); end > pc {
				pc = end
				r.gap = true
				continue
			}
		}

		r.orgAndLabel(addr, pc == 0)

		switch m.Class(addr) {
		case analyze.CodeStart:
			in, _ := m.InstAt(addr)
			r.inst(in)
			pc += in.Len
		case analyze.DataWord:
			fmt.Fprintf(&r.b, "\tdw %s\t; [%04Xh]\n", hexWord(uint16(r.mem[addr])<<8|uint16(r.mem[addr+1])), addr)
			pc += 2
		default:
			// DataByte, Unclassified, and any CodeTail left behind by
			// an abandoned span all dump as a raw byte.
			fmt.Fprintf(&r.b, "\tdb %s\t; [%04Xh] %s\n", hexByte(r.mem[addr]), addr, byteHint(r.mem[addr]))
			pc++
		}
	}
}

// blankRun returns the exclusive end of the unlabeled all-0xFF data
// run starting at addr, or the start itself if there is none.
func (r *renderer) blankRun(addr uint16) int {
	m := r.res.Map
	pc := int(addr)
	for pc < m.Size() {
		a := uint16(pc)
		if c := m.Class(a); c != analyze.DataByte && c != analyze.Unclassified {
			break
		}
		if r.mem[a] != 0xFF {
			break
		}
		if _, ok := r.names[a]; ok {
			break
		}
		pc++
	}
	return pc
}

// orgAndLabel emits the org directive and label line due at addr.
func (r *renderer) orgAndLabel(addr uint16, first bool) {
	if name, ok := r.tab.Code[addr]; ok {
		fmt.Fprintf(&r.b, "\norg\t%s\n", name)
		r.gap = false
	} else if r.gap {
		fmt.Fprintf(&r.b, "\norg\t%s\n", hexWord(addr))
		r.gap = false
	} else if first {
		if _, ok := r.names[addr]; !ok {
			fmt.Fprintf(&r.b, ";org\t%s\n", hexWord(addr))
		}
	}
	if name, ok := r.names[addr]; ok {
		fmt.Fprintf(&r.b, "%s:\n", name)
	}
}

// inst emits one instruction line with symbolic operands and hints.
func (r *renderer) inst(in isa51.Inst) {
	args := make([]any, 0, len(in.Operands))
	var hints []string
	for _, o := range in.Operands {
		s, hint := r.operand(in, o)
		args = append(args, s)
		if hint != "" {
			hints = append(hints, hint)
		}
	}
	line := in.Template
	if len(args) > 0 {
		line = fmt.Sprintf(in.Template, args...)
	}
	r.b.WriteByte('\t')
	r.b.WriteString(line)
	if len(hints) > 0 {
		r.b.WriteString("\t; " + strings.Join(hints, " "))
	}
	r.b.WriteByte('\n')
	if in.Kind == isa51.Jump || in.Kind == isa51.Ret || in.Kind == isa51.IndirectJump {
		r.b.WriteByte('\n') // blank line after control flow leaves
	}
}

// operand renders one operand and returns its display text plus an
// optional value hint.
func (r *renderer) operand(in isa51.Inst, o isa51.Operand) (string, string) {
	switch o.Kind {
	case isa51.Imm:
		return hexByte(byte(o.Val)), byteHint(byte(o.Val))
	case isa51.Direct:
		return r.direct(byte(o.Val)), ""
	case isa51.Bit:
		if name, ok := r.tab.Bit[o.Val]; ok {
			return name, ""
		}
		// No name for the bit: reduce to byte.bit display.
		bit := o.Val & 7
		var base byte
		if o.Val >= 0x80 {
			base = byte(o.Val) & 0xF8 // SFR
		} else {
			base = 0x20 | byte(o.Val>>3) // bit-addressable RAM
		}
		return fmt.Sprintf("%s.%d", r.direct(base), bit), ""
	case isa51.Code:
		if o.Val == in.Addr {
			return "$", "" // self-jump reads better than any label
		}
		if name, ok := r.names[o.Val]; ok {
			return name, ""
		}
		if name, ok := r.tab.Label[o.Val]; ok {
			return name, ""
		}
		return hexWord(o.Val), ""
	}
	return hexByte(byte(o.Val)), ""
}

// direct renders a direct address, warning once per unknown SFR.
func (r *renderer) direct(v byte) string {
	if name, ok := r.tab.Data[uint16(v)]; ok {
		return name
	}
	if v >= 0x80 && !r.seen[uint16(v)] {
		r.seen[uint16(v)] = true
		r.warns = append(r.warns, fmt.Sprintf("unknown SFR %s", hexByte(v)))
	}
	return hexByte(v)
}

// Names resolves every discovered label to its final name: the symbol
// table wins, labeled unconditional jumps become forwarding names,
// everything else gets a kind-prefixed auto name.
func Names(res *analyze.Result, tab *symtab.Table) map[uint16]string {
	names := make(map[uint16]string, len(res.Labels))
	for addr, kind := range res.Labels {
		if name, ok := tab.Label[addr]; ok {
			names[addr] = name
			continue
		}
		if fwd, ok := res.Forwards[addr]; ok {
			base, ok := tab.Label[fwd]
			if !ok {
				base = autoLabel(kind, fwd)
			}
			names[addr] = fmt.Sprintf("fwd_%04X_%s", addr, base)
			continue
		}
		names[addr] = autoLabel(kind, addr)
	}
	return names
}

func autoLabel(kind analyze.LabelKind, addr uint16) string {
	return fmt.Sprintf("%s_%04X", kind.Prefix(), addr)
}

// hexByte formats an assembler hex literal, zero-prefixed when it
// would otherwise start with a letter.
func hexByte(v byte) string {
	s := fmt.Sprintf("%02Xh", v)
	if s[0] > '9' {
		s = "0" + s
	}
	return s
}

func hexWord(v uint16) string {
	s := fmt.Sprintf("%04Xh", v)
	if s[0] > '9' {
		s = "0" + s
	}
	return s
}

// byteHint annotates a raw byte with its decimal, signed-decimal, and
// printable-character readings.
func byteHint(v byte) string {
	s := fmt.Sprintf("%3d", v)
	if v >= 0x80 {
		s += fmt.Sprintf(" %4d", int(v)-0x100)
	}
	if v >= 0x20 && v < 0x7F {
		s += fmt.Sprintf(" '%c'", v)
	}
	return s
}
