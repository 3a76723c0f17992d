package analyze

import (
	"testing"

	"dis51/internal/isa51"
)

func inst(addr uint16, length int) isa51.Inst {
	return isa51.Inst{Addr: addr, Len: length}
}

func TestMarkCodeSpan(t *testing.T) {
	m := NewMap(4)
	if err := m.MarkCode(inst(1, 3)); err != nil {
		t.Fatalf("MarkCode: %v", err)
	}
	want := []Class{Unclassified, CodeStart, CodeTail, CodeTail}
	for a, w := range want {
		if got := m.Class(uint16(a)); got != w {
			t.Errorf("class(%d) = %s, want %s", a, got, w)
		}
	}
}

func TestMarkCodeConflictLeavesMapUntouched(t *testing.T) {
	m := NewMap(4)
	if err := m.MarkData(2); err != nil {
		t.Fatalf("MarkData: %v", err)
	}
	err := m.MarkCode(inst(0, 3))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if err.Addr != 2 || err.Existing != DataByte {
		t.Errorf("conflict = %+v", err)
	}
	// The whole span is rejected, not partially written.
	if m.Class(0) != Unclassified || m.Class(1) != Unclassified {
		t.Errorf("span partially written: %s %s", m.Class(0), m.Class(1))
	}
}

func TestMarkDataOverCodeConflicts(t *testing.T) {
	m := NewMap(2)
	if err := m.MarkCode(inst(0, 2)); err != nil {
		t.Fatalf("MarkCode: %v", err)
	}
	if err := m.MarkData(1); err == nil {
		t.Fatal("expected conflict marking data over a code tail")
	}
	if err := m.MarkData(1); err == nil {
		t.Fatal("conflict must be stable on retry")
	}
}

func TestMarkDataIdempotent(t *testing.T) {
	m := NewMap(1)
	if err := m.MarkData(0); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := m.MarkData(0); err != nil {
		t.Fatalf("second: %v", err)
	}
}

func TestMarkWord(t *testing.T) {
	m := NewMap(4)
	if err := m.MarkWord(1); err != nil {
		t.Fatalf("MarkWord: %v", err)
	}
	if m.Class(1) != DataWord {
		t.Errorf("class(1) = %s, want data-word", m.Class(1))
	}
	if m.Class(2) == Unclassified {
		t.Error("high byte of the word left unclassified")
	}
	if err := m.MarkWord(3); err == nil {
		t.Error("word past the end of the space must fail")
	}
}

func TestMarkWordOverCodeConflicts(t *testing.T) {
	m := NewMap(4)
	if err := m.MarkCode(inst(2, 1)); err != nil {
		t.Fatalf("MarkCode: %v", err)
	}
	if err := m.MarkWord(1); err == nil {
		t.Fatal("expected conflict: word overlaps code")
	}
}
