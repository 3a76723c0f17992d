// Package symtab maps 8051 addresses to names: direct RAM/SFR
// addresses, bit addresses, code labels, and org positions. Tables are
// built from per-part defaults plus user include files and are read
// only during rendering.
package symtab

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Table holds one name map per address scope.
type Table struct {
	Code  map[uint16]string // org positions, also seeds for entry points
	Data  map[uint16]string // direct addresses (RAM and SFRs)
	Bit   map[uint16]string // bit addresses
	Label map[uint16]string // code labels
}

// New returns an empty table.
func New() *Table {
	return &Table{
		Code:  make(map[uint16]string),
		Data:  make(map[uint16]string),
		Bit:   make(map[uint16]string),
		Label: make(map[uint16]string),
	}
}

func (t *Table) scope(name string) map[uint16]string {
	switch name {
	case "CODE":
		return t.Code
	case "DATA":
		return t.Data
	case "BIT":
		return t.Bit
	case "LABEL":
		return t.Label
	}
	return nil
}

// Line format: name, scope keyword, address, optional trailing "h" for
// hex. Lines starting with ";" are comments and stay inert.
var linePat = regexp.MustCompile(`^([a-zA-Z0-9_]+)\s+([A-Z]+)\s+([0-9A-Fa-f]+)(h|H)?\s*$`)

// ReadInclude parses one include file into the table. Definitions
// already present are overridden, each with a warning. Unrecognized
// non-comment lines warn too; nothing here is fatal.
func (t *Table) ReadInclude(r io.Reader) (warns []string, err error) {
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimRight(sc.Text(), " \t")
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		m := linePat.FindStringSubmatch(line)
		if m == nil {
			warns = append(warns, fmt.Sprintf("line %d: unrecognized definition: %s", lineno, line))
			continue
		}
		name, scope := m[1], m[2]
		base := 10
		if m[4] != "" {
			base = 16
		}
		v, perr := strconv.ParseUint(m[3], base, 16)
		if perr != nil {
			warns = append(warns, fmt.Sprintf("line %d: bad address in: %s", lineno, line))
			continue
		}
		dst := t.scope(scope)
		if dst == nil {
			warns = append(warns, fmt.Sprintf("line %d: unknown scope %s", lineno, scope))
			continue
		}
		addr := uint16(v)
		if old, ok := dst[addr]; ok {
			warns = append(warns, fmt.Sprintf("line %d: overriding %s %04Xh from %s to %s", lineno, scope, addr, old, name))
		}
		dst[addr] = name
	}
	return warns, sc.Err()
}

// Vector is one interrupt vector of the selected part.
type Vector struct {
	Name string
	Addr uint16
}

// Vectors lists the part's reserved vectors in address order, taken
// from the CODE scope.
func (t *Table) Vectors() []Vector {
	vs := make([]Vector, 0, len(t.Code))
	for addr, name := range t.Code {
		vs = append(vs, Vector{Name: name, Addr: addr})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Addr < vs[j].Addr })
	return vs
}
