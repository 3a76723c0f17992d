// Package callgraph builds lattice graphs from the exploration result:
// a whole-program call graph and per-routine control-flow graphs.
package callgraph

import (
	"fmt"
	"sort"

	"github.com/zboralski/lattice"

	"dis51/internal/analyze"
	"dis51/internal/isa51"
)

// routineStarts returns the addresses that begin a routine: entry
// points and call targets that sit on decoded code, in ascending
// order. Plain branch targets stay internal to their routine.
func routineStarts(res *analyze.Result) []uint16 {
	var starts []uint16
	for addr := range res.Starts {
		if _, ok := res.Map.InstAt(addr); ok {
			starts = append(starts, addr)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	return starts
}

// owner resolves the routine containing addr: the greatest start at or
// below it. Returns false for code reached before any label.
func owner(starts []uint16, addr uint16) (uint16, bool) {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > addr }) - 1
	if i < 0 {
		return 0, false
	}
	return starts[i], true
}

// Build constructs the program call graph. Nodes are routine names;
// each call site becomes an edge from its owning routine to the
// callee. names maps addresses to final label names.
func Build(res *analyze.Result, names map[uint16]string) *lattice.Graph {
	starts := routineStarts(res)

	g := &lattice.Graph{}
	for _, s := range starts {
		g.Nodes = append(g.Nodes, nameOf(names, s))
	}
	for _, e := range res.Edges {
		caller, ok := owner(starts, e.From)
		if !ok {
			continue
		}
		g.Edges = append(g.Edges, lattice.Edge{
			Caller: nameOf(names, caller),
			Callee: nameOf(names, e.To),
		})
	}
	g.Dedup()
	return g
}

func nameOf(names map[uint16]string, addr uint16) string {
	if n, ok := names[addr]; ok {
		return n
	}
	return fmt.Sprintf("%04Xh", addr)
}

// BuildCFGs constructs a basic-block CFG for every routine.
func BuildCFGs(res *analyze.Result, names map[uint16]string) *lattice.CFGGraph {
	starts := routineStarts(res)
	cg := &lattice.CFGGraph{}
	for i, s := range starts {
		end := res.Map.Size()
		if i+1 < len(starts) {
			end = int(starts[i+1])
		}
		insts := collect(res.Map, s, end)
		if len(insts) == 0 {
			continue
		}
		cg.Funcs = append(cg.Funcs, buildFuncCFG(nameOf(names, s), insts, names))
	}
	return cg
}

// collect gathers the contiguous decoded instructions of one routine,
// stopping at the next routine start or the first non-code byte.
func collect(m *analyze.Map, start uint16, end int) []isa51.Inst {
	var insts []isa51.Inst
	for pc := int(start); pc < end && pc < m.Size(); {
		in, ok := m.InstAt(uint16(pc))
		if !ok {
			break
		}
		insts = append(insts, in)
		pc += in.Len
	}
	return insts
}

// buildFuncCFG runs the usual three passes: find leaders, partition,
// wire successors. Call sites are attached to their blocks.
func buildFuncCFG(name string, insts []isa51.Inst, names map[uint16]string) *lattice.FuncCFG {
	first := insts[0].Addr
	last := insts[len(insts)-1]
	limit := last.Addr + uint16(last.Len)

	addrToIdx := make(map[uint16]int, len(insts))
	for i, in := range insts {
		addrToIdx[in.Addr] = i
	}

	// Pass 1: leaders.
	leaders := map[int]bool{0: true}
	for i, in := range insts {
		switch in.Kind {
		case isa51.Jump, isa51.CondBranch, isa51.Ret, isa51.IndirectJump:
			if i+1 < len(insts) {
				leaders[i+1] = true
			}
			if in.HasTarget && in.Target >= first && in.Target < limit {
				if idx, ok := addrToIdx[in.Target]; ok {
					leaders[idx] = true
				}
			}
		}
	}
	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	// Pass 2: partition.
	cfg := &lattice.FuncCFG{Name: name}
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := len(insts)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		cfg.Blocks = append(cfg.Blocks, &lattice.BasicBlock{ID: i, Start: start, End: end})
		leaderToBlock[start] = i
	}

	// Pass 3: successors and calls.
	for i, blk := range cfg.Blocks {
		for idx := blk.Start; idx < blk.End; idx++ {
			in := insts[idx]
			if in.Kind == isa51.Call {
				blk.Calls = append(blk.Calls, lattice.CallSite{
					Offset: idx,
					Callee: nameOf(names, in.Target),
				})
			}
		}

		tail := insts[blk.End-1]
		switch tail.Kind {
		case isa51.Ret, isa51.IndirectJump:
			blk.Term = true
		case isa51.Jump:
			if bid, ok := blockOf(addrToIdx, leaderToBlock, tail.Target); ok {
				blk.Succs = append(blk.Succs, lattice.Successor{BlockID: bid})
			} else {
				blk.Term = true // jumps out of the routine
			}
		case isa51.CondBranch:
			if bid, ok := blockOf(addrToIdx, leaderToBlock, tail.Target); ok {
				blk.Succs = append(blk.Succs, lattice.Successor{BlockID: bid, Cond: "T"})
			}
			if i+1 < len(cfg.Blocks) {
				blk.Succs = append(blk.Succs, lattice.Successor{BlockID: i + 1, Cond: "F"})
			}
		default:
			if i+1 < len(cfg.Blocks) {
				blk.Succs = append(blk.Succs, lattice.Successor{BlockID: i + 1})
			}
		}
	}
	return cfg
}

func blockOf(addrToIdx map[uint16]int, leaderToBlock map[int]int, target uint16) (int, bool) {
	idx, ok := addrToIdx[target]
	if !ok {
		return 0, false
	}
	bid, ok := leaderToBlock[idx]
	return bid, ok
}
