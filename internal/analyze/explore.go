package analyze

import (
	"fmt"
	"sort"

	"dis51/internal/isa51"
)

// LabelKind says what a discovered address is used for, which decides
// its auto-generated name prefix.
type LabelKind uint8

const (
	LabelJump LabelKind = iota // control-flow target
	LabelDptr                  // constant-data reference (mov DPTR, #imm16)
	LabelAddr                  // discovered through a declared address table
)

// Prefix is the auto-label prefix for the kind.
func (k LabelKind) Prefix() string {
	switch k {
	case LabelDptr:
		return "dptr"
	case LabelAddr:
		return "addr"
	}
	return "jump"
}

// CallEdge is one static call site: the instruction at From calls To.
type CallEdge struct {
	From uint16
	To   uint16
}

// Config fixes the exploration parameters. Nothing here is mutated
// during a run.
type Config struct {
	Part     isa51.Part
	Base     uint16            // load address of byte 0
	NoReturn map[uint16]bool   // call targets that consume their return address
	Force    bool              // sweep unclassified runs as code after the fixpoint
}

// Result is the frozen outcome of one exploration.
type Result struct {
	Map      *Map
	Labels   map[uint16]LabelKind
	Starts   map[uint16]bool   // routine starts: entry points and call targets
	Forwards map[uint16]uint16 // labeled unconditional jump -> its target
	Edges    []CallEdge
	Diags    []Diag
}

// Explorer drives a worklist over the code space. Single-writer: it
// owns the Map until Run returns.
type Explorer struct {
	mem  []byte
	cfg  Config
	m    *Map
	work []uint16

	labels   map[uint16]LabelKind
	starts   map[uint16]bool
	edges    []CallEdge
	diags    []Diag
	finished bool
}

// New creates an explorer over mem. The configured code-space size is
// len(mem).
func New(mem []byte, cfg Config) *Explorer {
	return &Explorer{
		mem:    mem,
		cfg:    cfg,
		m:      NewMap(len(mem)),
		labels: make(map[uint16]LabelKind),
		starts: make(map[uint16]bool),
	}
}

func (x *Explorer) opts() isa51.Options {
	return isa51.Options{Part: x.cfg.Part, Base: x.cfg.Base}
}

// AddEntry seeds one pending code start.
func (x *Explorer) AddEntry(addr uint16) {
	if int(addr) >= x.m.Size() {
		x.diag(DiagOutOfBounds, addr, "entry point outside code space")
		return
	}
	x.label(addr, LabelJump)
	x.starts[addr] = true
	x.work = append(x.work, addr)
}

// label records the first use of an address; later uses never demote
// an existing label.
func (x *Explorer) label(addr uint16, kind LabelKind) {
	if _, ok := x.labels[addr]; !ok {
		x.labels[addr] = kind
	}
}

func (x *Explorer) diag(kind DiagKind, addr uint16, format string, args ...any) {
	x.diags = append(x.diags, Diag{Kind: kind, Addr: addr, Msg: fmt.Sprintf(format, args...)})
}

// pushTarget schedules an explicit control-flow target and labels it.
// Targets outside the code space are reported and dropped unlabeled,
// so the renderer never references a symbol it cannot define.
func (x *Explorer) pushTarget(from, to uint16, kind LabelKind) {
	if int(to) >= x.m.Size() {
		x.diag(DiagOutOfBounds, from, "target %04Xh outside code space", to)
		return
	}
	x.label(to, kind)
	x.work = append(x.work, to)
}

// pushFall schedules the fallthrough successor. Falling off the end of
// the code space is not an error; the edge is just dropped.
func (x *Explorer) pushFall(addr uint16) {
	if int(addr) < x.m.Size() {
		x.work = append(x.work, addr)
	}
}

// Run drains the worklist to its fixpoint, applies the force sweep if
// configured, and freezes the result. Processing order affects nothing
// but the order diagnostics are recorded in.
func (x *Explorer) Run() *Result {
	if x.finished {
		panic("analyze: Run called twice")
	}
	x.finished = true

	x.drain()

	if x.cfg.Force {
		x.sweep()
	}

	return &Result{
		Map:      x.m,
		Labels:   x.labels,
		Starts:   x.starts,
		Forwards: x.forwards(),
		Edges:    x.edges,
		Diags:    x.diags,
	}
}

func (x *Explorer) drain() {
	for len(x.work) > 0 {
		addr := x.work[len(x.work)-1]
		x.work = x.work[:len(x.work)-1]
		x.step(addr)
	}
}

// step decodes one pending address and schedules its successors.
func (x *Explorer) step(addr uint16) {
	switch x.m.Class(addr) {
	case CodeStart:
		return // already explored
	case CodeTail:
		x.diag(DiagConflict, addr, "target lands mid-instruction")
		return
	case DataByte, DataWord:
		x.diag(DiagConflict, addr, "code reaches byte already classified as %s", x.m.Class(addr))
		return
	}

	in, err := isa51.Decode(x.mem, addr, x.opts())
	if err != nil {
		// Reachability walked into something that does not decode.
		// That points at a bad entry point or length upstream, so it
		// is surfaced rather than silently patched.
		x.diag(DiagUndefinedOpcode, addr, "%02Xh does not decode: %v", x.mem[addr], err)
		return
	}
	if conflict := x.m.MarkCode(in); conflict != nil {
		x.diag(DiagConflict, addr, "%v", conflict)
		return
	}
	x.successors(in, true)
}

// successors schedules the addresses reachable from in. fall controls
// whether fallthrough edges are pushed; the force sweep advances
// sequentially itself and passes false.
func (x *Explorer) successors(in isa51.Inst, fall bool) {
	if in.DptrRef && len(in.Operands) == 1 && int(in.Operands[0].Val) < x.m.Size() {
		x.label(in.Operands[0].Val, LabelDptr)
	}

	switch in.Kind {
	case isa51.Fallthrough:
		if fall {
			x.pushFall(in.Next())
		}
	case isa51.CondBranch:
		x.pushTarget(in.Addr, in.Target, LabelJump)
		if fall {
			x.pushFall(in.Next())
		}
	case isa51.Jump:
		x.pushTarget(in.Addr, in.Target, LabelJump)
	case isa51.Call:
		x.pushTarget(in.Addr, in.Target, LabelJump)
		if int(in.Target) < x.m.Size() {
			x.starts[in.Target] = true
		}
		x.edges = append(x.edges, CallEdge{From: in.Addr, To: in.Target})
		if fall && !x.cfg.NoReturn[in.Target] {
			x.pushFall(in.Next())
		}
	case isa51.Ret, isa51.IndirectJump, isa51.IndirectCall:
		// No static successors. Indirect targets come only from
		// user-declared tables.
	}
}

// sweep fills every remaining unclassified run with sequentially
// decoded instructions. Bytes that do not decode become data; hitting
// an already-classified byte ends the run without a conflict.
func (x *Explorer) sweep() {
	size := x.m.Size()
	for addr := 0; addr < size; {
		if x.m.Class(uint16(addr)) != Unclassified {
			addr++
			continue
		}
		in, err := isa51.Decode(x.mem, uint16(addr), x.opts())
		if err != nil {
			x.m.MarkData(uint16(addr))
			addr++
			continue
		}
		if conflict := x.m.MarkCode(in); conflict != nil {
			// Tail overlaps reachable code; keep the reachable span.
			x.m.MarkData(uint16(addr))
			addr++
			continue
		}
		x.successors(in, false)
		x.drain()
		addr += in.Len
	}
}

// forwards maps every labeled unconditional jump to its target, so the
// renderer can name it fwd_XXXX_<target>.
func (x *Explorer) forwards() map[uint16]uint16 {
	fwd := make(map[uint16]uint16)
	for addr := range x.labels {
		if in, ok := x.m.InstAt(addr); ok && in.Kind == isa51.Jump && in.HasTarget {
			fwd[addr] = in.Target
		}
	}
	return fwd
}

// SortedLabels returns the labeled addresses in ascending order.
func (r *Result) SortedLabels() []uint16 {
	addrs := make([]uint16, 0, len(r.Labels))
	for a := range r.Labels {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
