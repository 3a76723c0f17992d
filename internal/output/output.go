// Package output writes dis51 artifacts to files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zboralski/lattice"
	latrender "github.com/zboralski/lattice/render"

	"dis51/internal/analyze"
)

// WriteASM writes the assembly listing.
func WriteASM(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// SymbolEntry is one discovered or named code address.
type SymbolEntry struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
}

// WriteSymbolsJSON writes every resolved label to symbols.json under
// dir, in address order.
func WriteSymbolsJSON(dir string, res *analyze.Result, names map[uint16]string) error {
	entries := make([]SymbolEntry, 0, len(names))
	for _, addr := range res.SortedLabels() {
		name, ok := names[addr]
		if !ok {
			continue
		}
		entries = append(entries, SymbolEntry{
			Address: fmt.Sprintf("0x%04X", addr),
			Name:    name,
			Kind:    res.Labels[addr].Prefix(),
		})
	}
	return writeJSON(filepath.Join(dir, "symbols.json"), entries)
}

// WriteCallGraphDOT renders the program call graph to callgraph.dot.
func WriteCallGraphDOT(dir string, g *lattice.Graph) error {
	dot := latrender.DOT(g, "callgraph")
	path := filepath.Join(dir, "callgraph.dot")
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// WriteCFGDOTs renders one DOT file per routine under dir/cfg.
// Single-block routines are skipped; their graph says nothing.
func WriteCFGDOTs(dir string, cg *lattice.CFGGraph) (int, error) {
	cfgDir := filepath.Join(dir, "cfg")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return 0, fmt.Errorf("output: mkdir cfg: %w", err)
	}
	var written int
	for _, f := range cg.Funcs {
		if len(f.Blocks) < 2 {
			continue
		}
		g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{f}}
		dot := latrender.DOTCFG(g, f.Name)
		path := filepath.Join(cfgDir, f.Name+".dot")
		if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
			return written, fmt.Errorf("output: write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

// DiagEntry is one diagnostic in diagnostics.json.
type DiagEntry struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
	Message string `json:"message"`
}

// WriteDiagnosticsJSON writes the run's aggregated diagnostics sorted
// by address.
func WriteDiagnosticsJSON(dir string, diags []analyze.Diag) error {
	entries := make([]DiagEntry, 0, len(diags))
	for _, d := range diags {
		entries = append(entries, DiagEntry{
			Kind:    d.Kind.String(),
			Address: fmt.Sprintf("0x%04X", d.Addr),
			Message: d.Msg,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })
	return writeJSON(filepath.Join(dir, "diagnostics.json"), entries)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
