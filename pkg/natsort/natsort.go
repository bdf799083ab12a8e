// Package natsort orders storage keys the way a person reads them: embedded
// numbers compare by value, so "rec_chunk_10" sorts after "rec_chunk_9".
package natsort

import (
	"sort"
	"strings"
)

type run struct {
	text    string
	numeric bool
}

// split breaks s into alternating runs of ASCII digits and everything else
func split(s string) []run {
	var runs []run
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i-1]) != isDigit(s[i]) {
			runs = append(runs, run{text: s[start:i], numeric: isDigit(s[start])})
			start = i
		}
	}
	if start < len(s) {
		runs = append(runs, run{text: s[start:], numeric: isDigit(s[start])})
	}
	return runs
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// compareNumeric compares digit runs of any length without overflowing
func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// same value: fewer leading zeros first
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Compare returns -1, 0 or 1 comparing a and b in natural order
func Compare(a, b string) int {
	ra, rb := split(a), split(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		x, y := ra[i], rb[i]
		var c int
		switch {
		case x.numeric && y.numeric:
			c = compareNumeric(x.text, y.text)
		case x.numeric:
			c = -1
		case y.numeric:
			c = 1
		default:
			c = strings.Compare(strings.ToLower(x.text), strings.ToLower(y.text))
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	}
	// keys equal ignoring case; keep the result deterministic
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Order returns a naturally sorted copy of keys
func Order(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}
