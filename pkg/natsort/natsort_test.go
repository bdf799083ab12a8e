package natsort

import (
	"reflect"
	"testing"
)

func TestOrder_ChunkSuffixes(t *testing.T) {
	got := Order([]string{"rec_chunk_2", "rec_chunk_10", "rec_chunk_1"})
	want := []string{"rec_chunk_1", "rec_chunk_2", "rec_chunk_10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestOrder_ManyChunksScrambled(t *testing.T) {
	keys := []string{
		"a1b2_chunk_11.webm", "a1b2_chunk_3.webm", "a1b2_chunk_100.webm",
		"a1b2_chunk_0.webm", "a1b2_chunk_21.webm", "a1b2_chunk_9.webm",
	}
	got := Order(keys)
	want := []string{
		"a1b2_chunk_0.webm", "a1b2_chunk_3.webm", "a1b2_chunk_9.webm",
		"a1b2_chunk_11.webm", "a1b2_chunk_21.webm", "a1b2_chunk_100.webm",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	in := []string{"x10", "x2"}
	_ = Order(in)
	if in[0] != "x10" || in[1] != "x2" {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"chunk_9", "chunk_10", -1},
		{"Chunk_2", "chunk_1", 1},
		{"ABC", "abc", -1}, // equal ignoring case, raw order decides
		{"file7", "file07", -1},
		{"file", "file1", -1},
		{"1a", "a1", -1},
		{"rec_99999999999999999999999", "rec_100000000000000000000000", -1},
		{"same", "same", 0},
		{"", "a", -1},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOrder_DuplicatesDoNotPanic(t *testing.T) {
	got := Order([]string{"k_2", "k_1", "k_2", "K_1"})
	if len(got) != 4 {
		t.Fatalf("lost keys: %v", got)
	}
	if got[0] != "K_1" || got[1] != "k_1" {
		t.Fatalf("unexpected order %v", got)
	}
}
