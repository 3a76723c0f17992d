package callgraph

import (
	"reflect"
	"testing"

	"github.com/zboralski/lattice"

	"dis51/internal/analyze"
	"dis51/internal/render"
	"dis51/internal/symtab"
)

func analyzeProgram(t *testing.T, mem []byte, entries ...uint16) (*analyze.Result, map[uint16]string) {
	t.Helper()
	x := analyze.New(mem, analyze.Config{})
	for _, e := range entries {
		x.AddEntry(e)
	}
	res := x.Run()
	return res, render.Names(res, symtab.New())
}

func TestBuildCallGraph(t *testing.T) {
	// main at 0 calls the routine at 4, then returns.
	mem := []byte{0x12, 0x00, 0x04, 0x22, 0x22}
	res, names := analyzeProgram(t, mem, 0)

	g := Build(res, names)
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %v, want 2", g.Nodes)
	}
	want := lattice.Edge{Caller: "jump_0000", Callee: "jump_0004"}
	if len(g.Edges) != 1 || !reflect.DeepEqual(g.Edges[0], want) {
		t.Errorf("edges = %v, want [%v]", g.Edges, want)
	}
}

func TestBuildDedupsRepeatedCalls(t *testing.T) {
	// Two call sites to the same routine collapse to one edge.
	mem := []byte{0x12, 0x00, 0x06, 0x12, 0x00, 0x06, 0x22, 0x00}
	res, names := analyzeProgram(t, mem, 0)

	g := Build(res, names)
	if len(g.Edges) != 1 {
		t.Errorf("edges = %v, want 1 after dedup", g.Edges)
	}
}

func TestBuildCFGsBranches(t *testing.T) {
	// jz +1 / ret / ret: one conditional diamond, three blocks.
	mem := []byte{0x60, 0x01, 0x22, 0x22}
	res, names := analyzeProgram(t, mem, 0)

	cg := BuildCFGs(res, names)
	if len(cg.Funcs) == 0 {
		t.Fatal("no routine CFGs built")
	}
	f := cg.Funcs[0]
	if len(f.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(f.Blocks))
	}

	b0 := f.Blocks[0]
	var hasT, hasF bool
	for _, s := range b0.Succs {
		if s.Cond == "T" {
			hasT = true
		}
		if s.Cond == "F" {
			hasF = true
		}
	}
	if !hasT || !hasF {
		t.Errorf("entry block succs = %+v, want T and F edges", b0.Succs)
	}
}

func TestBuildCFGsCallSites(t *testing.T) {
	mem := []byte{0x12, 0x00, 0x04, 0x22, 0x22}
	res, names := analyzeProgram(t, mem, 0)

	cg := BuildCFGs(res, names)
	var found bool
	for _, f := range cg.Funcs {
		for _, b := range f.Blocks {
			for _, c := range b.Calls {
				if c.Callee == "jump_0004" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("call site to jump_0004 missing from CFG blocks")
	}
}
