package huffman

import "fmt"

// reverseEntry is one slot of a flat lookahead decode table: for every
// possible maxLen-bit window, which symbol that window's code prefix
// names and how many bits of the window actually belong to the code.
type reverseEntry struct {
	symbol byte
	length uint8
	valid  bool
}

// ReverseDict is a flat array-based decode table bounded by MaxCodeLen,
// the shape spec.md calls for so DecodeSpan never walks a tree: every
// one of the 2^maxLen possible lookahead windows maps directly to a
// (symbol, length) pair in one slice index.
type ReverseDict struct {
	entries []reverseEntry
	maxLen  int
}

// BuildReverseDict expands d into a ReverseDict over windows of maxLen
// bits. For a code shorter than maxLen, every window whose leading
// bits equal that code (regardless of the remaining bits) is filled
// with the same (symbol, length) pair, since the prefix-free property
// of d guarantees no other code can also be a prefix of that window.
func BuildReverseDict(d Dict, maxLen int) ReverseDict {
	rev := ReverseDict{
		entries: make([]reverseEntry, 1<<uint(maxLen)),
		maxLen:  maxLen,
	}

	for sym := 0; sym < 256; sym++ {
		code := d[sym]
		if len(code) == 0 {
			continue
		}
		prefix := codeToUint(code)
		pad := maxLen - len(code)
		start := prefix << uint(pad)
		count := uint64(1) << uint(pad)
		for i := uint64(0); i < count; i++ {
			rev.entries[start+i] = reverseEntry{
				symbol: byte(sym),
				length: uint8(len(code)),
				valid:  true,
			}
		}
	}

	return rev
}

// DecodeSpan reverses EncodeSpan: src holds totalBits of MSB-first
// Huffman-coded data, dst must already be sized to the expected
// decoded length, and rev must have been built from the same d used
// to encode. Decoding stops once len(dst) symbols have been produced;
// FormatError is returned if a lookahead window has no valid entry or
// the stream runs out of bits before dst is filled.
func DecodeSpan(src []byte, totalBits uint64, dst []byte, d Dict, rev ReverseDict) error {
	r := NewBitReader(src, totalBits)

	for i := range dst {
		if r.Done() {
			return newError(FormatError, "DecodeSpan", fmt.Errorf("ran out of bits after %d of %d symbols", i, len(dst)))
		}

		window := r.Peek(rev.maxLen)
		entry := rev.entries[window]
		if !entry.valid {
			return newError(FormatError, "DecodeSpan", fmt.Errorf("no code matches bit window at position %d", r.Pos()))
		}

		// A Kraft-complete table means every bit pattern is "valid" in
		// the lookup sense, including one assembled from zero-padding
		// past the end of a truncated stream. The padding can spell
		// out a code that is longer than what's actually left, so the
		// remaining-bits budget must be checked before Advance, which
		// otherwise panics on untrusted input instead of reporting the
		// FormatError a truncated stream should be.
		if uint64(entry.length) > r.Remaining() {
			return newError(FormatError, "DecodeSpan", fmt.Errorf("truncated stream: code at position %d needs %d bits, only %d remain", r.Pos(), entry.length, r.Remaining()))
		}

		dst[i] = entry.symbol
		r.Advance(int(entry.length))
	}

	return nil
}
