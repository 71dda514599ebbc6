package huffman

// Dict is a fixed 256-entry Huffman code table: Dict[s] is the
// MSB-first bit sequence assigned to byte value s, or nil/empty if s
// never occurs.
type Dict [256][]bool

// DeriveDict walks t depth-first (left edge appends bit 0, right edge
// appends bit 1) to assign each leaf's accumulated path as its code.
// An empty tree yields 256 empty entries. If the tree would produce a
// code longer than MaxCodeLen, the lengths are shrunk via
// limitCodeLengths and canonical codes are assigned directly from the
// adjusted lengths — the decoder's reverse dictionary is sized
// 2^MaxCodeLen, so this is mandatory, not an optimization.
func DeriveDict(t Tree) Dict {
	var d Dict
	if t.Root == NullIndex {
		return d
	}

	if len(t.Nodes) == 1 {
		// Degenerate single-symbol input: the implementation must not
		// produce a zero-length code, so the lone symbol gets the
		// conventional single bit 0.
		d[t.Nodes[t.Root].Symbol] = []bool{false}
		return d
	}

	var walk func(idx int, path []bool)
	walk = func(idx int, path []bool) {
		n := t.Nodes[idx]
		if n.IsLeaf {
			code := make([]bool, len(path))
			copy(code, path)
			d[n.Symbol] = code
			return
		}
		walk(n.Left, append(path, false))
		walk(n.Right, append(path, true))
	}
	walk(t.Root, nil)

	maxLen := 0
	for sym := 0; sym < 256; sym++ {
		if len(d[sym]) > maxLen {
			maxLen = len(d[sym])
		}
	}

	if maxLen > MaxCodeLen {
		d = lengthLimit(d)
	}

	return d
}

// lengthLimit rebuilds d so that every active symbol's code length is
// at most MaxCodeLen, preserving the set of active symbols and
// assigning fresh canonical codes from the adjusted lengths.
func lengthLimit(d Dict) Dict {
	type sym struct {
		value  int
		length int
	}

	var syms []sym
	for s := 0; s < 256; s++ {
		if len(d[s]) > 0 {
			syms = append(syms, sym{s, len(d[s])})
		}
	}

	lengths := make([]int, len(syms))
	for i, s := range syms {
		lengths[i] = s.length
	}

	limitCodeLengths(lengths, MaxCodeLen)

	var placeholder Dict
	for i, s := range syms {
		placeholder[s.value] = make([]bool, lengths[i])
	}
	return CanonicalizeDict(placeholder)
}

// limitCodeLengths caps every entry of lengths at maxLen in place,
// then, while the Kraft sum Σ 2^(maxLen-length) exceeds the budget
// 2^maxLen, lengthens codes by one bit, starting from the deepest
// bucket below maxLen (halving their contribution), until the sum fits.
// This is the iterative sibling-rotation fixup spec.md's design notes
// call for in place of full package-merge: it preserves the leaf
// count and restores the Kraft inequality. The final sum can land
// below the budget, in which case the code is not complete and some
// decode-table windows stay unused.
func limitCodeLengths(lengths []int, maxLen int) {
	for i := range lengths {
		if lengths[i] > maxLen {
			lengths[i] = maxLen
		}
	}

	weight := func(l int) uint64 { return uint64(1) << uint(maxLen-l) }

	var sum uint64
	for _, l := range lengths {
		sum += weight(l)
	}
	budget := uint64(1) << uint(maxLen)

	for sum > budget {
		promoted := false
		for bits := maxLen - 1; bits >= 1; bits-- {
			for i := range lengths {
				if sum <= budget {
					break
				}
				if lengths[i] == bits {
					sum -= weight(lengths[i]) / 2
					lengths[i]++
					promoted = true
				}
			}
			if sum <= budget {
				break
			}
		}
		if !promoted {
			// Unreachable given n <= 256 <= 2^maxLen, kept as a
			// guard against an infinite loop if that ever changes.
			break
		}
	}
}
