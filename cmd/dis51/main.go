// dis51 reconstructs assembly from a raw 8051/8052 firmware dump.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"dis51/internal/analyze"
	"dis51/internal/callgraph"
	"dis51/internal/isa51"
	"dis51/internal/output"
	"dis51/internal/render"
	"dis51/internal/symtab"
)

func main() {
	var cli struct {
		Disasm disasmCmd `cmd:"" default:"1" help:"disassemble a firmware dump"`
	}

	ctx := kong.Parse(&cli,
		kong.Name("dis51"),
		kong.Description("control-flow disassembler for 8051/8052 firmware dumps"))
	err := ctx.Run(&kong.Context{})
	ctx.FatalIfErrorf(err)
}

type disasmCmd struct {
	Bin       string   `arg:"" name:"bin" type:"existingfile" help:"raw firmware dump"`
	Part      string   `name:"part" default:"8051" enum:"8051,8052" help:"target part"`
	Entry     []string `name:"entry" short:"e" help:"entry point address (repeatable)"`
	Vectors   bool     `name:"vectors" help:"seed all interrupt vectors of the part"`
	Calls     []string `name:"calls" help:"call-array range start:end[:stride] (repeatable)"`
	Table     []string `name:"table" help:"address-table range start:end[:stride] (repeatable)"`
	NoReturn  []string `name:"noreturn" help:"call target that never returns (repeatable)"`
	Include   []string `name:"include" short:"i" type:"existingfile" help:"symbol include file (repeatable)"`
	Base      string   `name:"base" default:"0" help:"load address of the first byte"`
	Force     bool     `name:"force" help:"disassemble unreachable bytes as code too"`
	SkipBlank bool     `name:"skip-blank" help:"omit unlabeled 0FFh runs from the listing"`
	Out       string   `name:"out" short:"o" default:"-" help:"listing path, - for stdout"`
	Graph     string   `name:"graph" help:"directory for callgraph.dot, cfg/, symbols.json, diagnostics.json"`
}

func (c *disasmCmd) Run(ctx *kong.Context) error {
	mem, err := os.ReadFile(c.Bin)
	if err != nil {
		return fmt.Errorf("read binary: %w", err)
	}
	if len(mem) > 0x10000 {
		return fmt.Errorf("binary is %d bytes; 8051 code space is at most 65536", len(mem))
	}

	part := isa51.P8051
	tab := symtab.Part8051()
	if c.Part == "8052" {
		part = isa51.P8052
		tab = symtab.Part8052()
	}

	for _, path := range c.Include {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open include: %w", err)
		}
		warns, err := tab.ReadInclude(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read include %s: %w", path, err)
		}
		for _, w := range warns {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", path, w)
		}
	}

	base, err := parseAddr(c.Base)
	if err != nil {
		return fmt.Errorf("--base: %w", err)
	}

	noReturn := make(map[uint16]bool, len(c.NoReturn))
	for _, s := range c.NoReturn {
		addr, err := parseAddr(s)
		if err != nil {
			return fmt.Errorf("--noreturn %q: %w", s, err)
		}
		noReturn[addr] = true
	}

	x := analyze.New(mem, analyze.Config{
		Part:     part,
		Base:     base,
		NoReturn: noReturn,
		Force:    c.Force,
	})

	// Seed entry points: explicit addresses, vectors on request, the
	// reset vector when nothing else is given.
	for _, s := range c.Entry {
		addr, err := parseAddr(s)
		if err != nil {
			return fmt.Errorf("--entry %q: %w", s, err)
		}
		x.AddEntry(addr)
	}
	if c.Vectors {
		for _, v := range tab.Vectors() {
			x.AddEntry(v.Addr)
		}
	}
	if len(c.Entry) == 0 && !c.Vectors {
		x.AddEntry(0x0000)
	}

	for _, s := range c.Calls {
		r, err := parseRange(s)
		if err != nil {
			return fmt.Errorf("--calls %q: %w", s, err)
		}
		if err := x.AddCallArray(r); err != nil {
			return fmt.Errorf("--calls %q: %w", s, err)
		}
	}
	for _, s := range c.Table {
		r, err := parseRange(s)
		if err != nil {
			return fmt.Errorf("--table %q: %w", s, err)
		}
		if err := x.AddAddrTable(r); err != nil {
			return fmt.Errorf("--table %q: %w", s, err)
		}
	}

	res := x.Run()

	text, warns := render.Render(mem, res, tab, render.Options{SkipBlank: c.SkipBlank})
	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, d := range res.Diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	if c.Out == "-" {
		if _, err := os.Stdout.WriteString(text); err != nil {
			return err
		}
	} else if err := output.WriteASM(c.Out, text); err != nil {
		return err
	}

	if c.Graph != "" {
		if err := os.MkdirAll(c.Graph, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", c.Graph, err)
		}
		names := render.Names(res, tab)
		cg := callgraph.Build(res, names)
		if err := output.WriteCallGraphDOT(c.Graph, cg); err != nil {
			return err
		}
		n, err := output.WriteCFGDOTs(c.Graph, callgraph.BuildCFGs(res, names))
		if err != nil {
			return err
		}
		if err := output.WriteSymbolsJSON(c.Graph, res, names); err != nil {
			return err
		}
		if err := output.WriteDiagnosticsJSON(c.Graph, res.Diags); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote callgraph (%d nodes, %d edges), %d CFGs to %s\n",
			len(cg.Nodes), len(cg.Edges), n, c.Graph)
	}

	return nil
}
