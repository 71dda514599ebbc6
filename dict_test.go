package huffman

import (
	"math/rand"
	"testing"
)

func TestDeriveDictEmptyTree(t *testing.T) {
	d := DeriveDict(Tree{Root: NullIndex})
	for sym := 0; sym < 256; sym++ {
		if len(d[sym]) != 0 {
			t.Fatalf("symbol %d: want empty code, got %v", sym, d[sym])
		}
	}
}

func TestDeriveDictSingleSymbol(t *testing.T) {
	var hist [256]uint64
	hist['z'] = 42
	tr := BuildTree(hist)
	d := DeriveDict(tr)

	if len(d['z']) != 1 {
		t.Fatalf("want single-bit code, got %v", d['z'])
	}
	for sym := 0; sym < 256; sym++ {
		if sym == 'z' {
			continue
		}
		if len(d[sym]) != 0 {
			t.Fatalf("symbol %d: want empty code, got %v", sym, d[sym])
		}
	}
}

func TestDeriveDictInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(123))

	for _, size := range []int{0, 1 << 4, 1 << 8, 1 << 12, 1 << 20} {
		payload := make([]byte, size)
		rng.Read(payload)

		hist := Histogram(payload)
		tr := BuildTree(hist)
		d := DeriveDict(tr)

		if size == 0 {
			for sym := 0; sym < 256; sym++ {
				if len(d[sym]) != 0 {
					t.Fatalf("size 0: symbol %d not empty", sym)
				}
			}
			continue
		}

		for sym := 0; sym < 256; sym++ {
			if hist[sym] > 0 && len(d[sym]) == 0 {
				t.Fatalf("symbol %d present in histogram but missing from dict", sym)
			}
			if hist[sym] == 0 && len(d[sym]) != 0 {
				t.Fatalf("symbol %d absent from histogram but present in dict", sym)
			}
			if len(d[sym]) > MaxCodeLen {
				t.Fatalf("symbol %d: code length %d exceeds MaxCodeLen", sym, len(d[sym]))
			}
		}

		assertPrefixFree(t, d)

		seen := make(map[string]bool)
		for sym := 0; sym < 256; sym++ {
			if len(d[sym]) == 0 {
				continue
			}
			key := boolsKey(d[sym])
			if seen[key] {
				t.Fatalf("duplicate code for symbol %d", sym)
			}
			seen[key] = true
		}
	}
}

func TestDeriveDictLengthLimitsPathologicalDistribution(t *testing.T) {
	// A Fibonacci-like frequency distribution forces an unconstrained
	// Huffman tree deeper than MaxCodeLen once enough symbols are
	// used; all 256 symbols guarantees we exceed it comfortably.
	var hist [256]uint64
	a, b := uint64(1), uint64(1)
	for sym := 0; sym < 256; sym++ {
		hist[sym] = a
		a, b = b, a+b
	}

	tr := BuildTree(hist)
	d := DeriveDict(tr)

	for sym := 0; sym < 256; sym++ {
		if len(d[sym]) == 0 {
			t.Fatalf("symbol %d missing from length-limited dict", sym)
		}
		if len(d[sym]) > MaxCodeLen {
			t.Fatalf("symbol %d: code length %d exceeds MaxCodeLen", sym, len(d[sym]))
		}
	}
	assertPrefixFree(t, d)
}

func boolsKey(bits []bool) string {
	buf := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
