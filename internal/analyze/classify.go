// Package analyze classifies every byte of an 8051 code space as code
// or data by exploring control flow from a set of entry points.
package analyze

import (
	"fmt"

	"dis51/internal/isa51"
)

// Class is the classification of one code-space byte.
type Class uint8

const (
	Unclassified Class = iota
	CodeStart          // first byte of a decoded instruction
	CodeTail           // continuation byte of a decoded instruction
	DataByte
	DataWord // low byte of a 16-bit big-endian word; owns the next byte too
)

func (c Class) String() string {
	switch c {
	case Unclassified:
		return "unclassified"
	case CodeStart:
		return "code"
	case CodeTail:
		return "code-tail"
	case DataByte:
		return "data"
	case DataWord:
		return "data-word"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// ConflictError reports an attempt to overwrite an incompatible
// classification. Classification is monotonic: code never silently
// becomes data and vice versa.
type ConflictError struct {
	Addr      uint16
	Existing  Class
	Attempted Class
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("classification conflict at %04Xh: %s already marked, cannot mark %s",
		e.Addr, e.Existing, e.Attempted)
}

// Map holds one classification per byte of the code space. It has a
// single writer (the Explorer) and is read-only once exploration ends.
type Map struct {
	class []Class
	insts map[uint16]isa51.Inst
}

// NewMap allocates a map covering size bytes, all Unclassified.
func NewMap(size int) *Map {
	return &Map{
		class: make([]Class, size),
		insts: make(map[uint16]isa51.Inst),
	}
}

// Size is the configured code-space size in bytes.
func (m *Map) Size() int { return len(m.class) }

// Class returns the classification of addr.
func (m *Map) Class(addr uint16) Class {
	if int(addr) >= len(m.class) {
		return Unclassified
	}
	return m.class[addr]
}

// InstAt returns the instruction whose first byte is addr.
func (m *Map) InstAt(addr uint16) (isa51.Inst, bool) {
	in, ok := m.insts[addr]
	return in, ok
}

// MarkCode classifies the instruction's span as CodeStart + CodeTail.
// The whole span is checked before anything is written, so a conflict
// leaves the map untouched.
func (m *Map) MarkCode(in isa51.Inst) *ConflictError {
	for i := 0; i < in.Len; i++ {
		a := in.Addr + uint16(i)
		want := CodeStart
		if i > 0 {
			want = CodeTail
		}
		if got := m.class[a]; got != Unclassified && got != want {
			return &ConflictError{Addr: a, Existing: got, Attempted: want}
		}
	}
	m.class[in.Addr] = CodeStart
	for i := 1; i < in.Len; i++ {
		m.class[in.Addr+uint16(i)] = CodeTail
	}
	m.insts[in.Addr] = in
	return nil
}

// MarkData classifies a single byte as data.
func (m *Map) MarkData(addr uint16) *ConflictError {
	switch m.class[addr] {
	case Unclassified:
		m.class[addr] = DataByte
	case DataByte, DataWord:
		// already data
	default:
		return &ConflictError{Addr: addr, Existing: m.class[addr], Attempted: DataByte}
	}
	return nil
}

// MarkWord classifies addr and addr+1 as one big-endian data word.
// Only the low address carries DataWord; the renderer consumes both.
func (m *Map) MarkWord(addr uint16) *ConflictError {
	if int(addr)+1 >= len(m.class) {
		return &ConflictError{Addr: addr, Existing: Unclassified, Attempted: DataWord}
	}
	for i := uint16(0); i < 2; i++ {
		if got := m.class[addr+i]; got == CodeStart || got == CodeTail {
			return &ConflictError{Addr: addr + i, Existing: got, Attempted: DataWord}
		}
	}
	m.class[addr] = DataWord
	m.class[addr+1] = DataByte
	return nil
}
