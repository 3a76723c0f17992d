package main

import (
	"testing"

	"dis51/internal/analyze"
)

func TestParseAddr(t *testing.T) {
	good := map[string]uint16{
		"0x12AB": 0x12AB,
		"0X0003": 0x0003,
		"12ABh":  0x12AB,
		"0FFH":   0x00FF,
		"2b":     0x002B,
	}
	for in, want := range good {
		got, err := parseAddr(in)
		if err != nil || got != want {
			t.Errorf("parseAddr(%q) = %04X, %v; want %04X", in, got, err, want)
		}
	}

	for _, in := range []string{"", "xyz", "0x", "12345h", "0x10000"} {
		if _, err := parseAddr(in); err == nil {
			t.Errorf("parseAddr(%q) succeeded, want error", in)
		}
	}
}

func TestParseRange(t *testing.T) {
	r, err := parseRange("0100h:0110h")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if r != (analyze.Range{Start: 0x0100, End: 0x0110, Stride: 2}) {
		t.Errorf("range = %+v, want default stride 2", r)
	}

	r, err = parseRange("0x200:0x230:3")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if r.Stride != 3 {
		t.Errorf("stride = %d, want 3", r.Stride)
	}

	for _, in := range []string{"0100h", "a:b:c:d", "0100h:zzz", "0:10:x"} {
		if _, err := parseRange(in); err == nil {
			t.Errorf("parseRange(%q) succeeded, want error", in)
		}
	}
}
