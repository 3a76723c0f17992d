package main

import (
	"fmt"
	"strconv"
	"strings"

	"dis51/internal/analyze"
)

// parseAddr reads a code-space address. Accepted spellings: 0x12AB,
// 12ABh, or bare hex digits.
func parseAddr(s string) (uint16, error) {
	orig := s
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	case strings.HasSuffix(s, "h"), strings.HasSuffix(s, "H"):
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", orig)
	}
	return uint16(v), nil
}

// parseRange reads start:end[:stride]. The stride defaults to 2, the
// width of both a short call and an address-table slot.
func parseRange(s string) (analyze.Range, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return analyze.Range{}, fmt.Errorf("want start:end[:stride], got %q", s)
	}
	start, err := parseAddr(parts[0])
	if err != nil {
		return analyze.Range{}, err
	}
	end, err := parseAddr(parts[1])
	if err != nil {
		return analyze.Range{}, err
	}
	r := analyze.Range{Start: start, End: end, Stride: 2}
	if len(parts) == 3 {
		stride, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			return analyze.Range{}, fmt.Errorf("bad stride %q", parts[2])
		}
		r.Stride = uint16(stride)
	}
	return r, nil
}
