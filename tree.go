package huffman

import "container/heap"

// NullIndex marks the absence of a child or root in a Tree.
const NullIndex = -1

// Node is one entry in a Tree's flat node arena. Internal nodes carry
// both Left and Right (indices into the same Tree.Nodes slice);
// leaves carry neither and carry Symbol instead.
type Node struct {
	Freq    uint64
	Symbol  byte
	Left    int
	Right   int
	IsLeaf  bool
}

// Tree is an ordered arena of nodes plus the index of the root.
// Root is NullIndex iff the tree is empty (zero nodes, built from an
// all-zero histogram). Nodes are appended in construction order: for
// a non-empty tree the root is always the last node appended.
type Tree struct {
	Nodes []Node
	Root  int
}

// pqEntry is one item in the tree-building priority queue: a pointer
// to a node already in the arena, plus the sequence number it was
// pushed with. Ties in frequency are broken by ascending sequence
// number (insertion order), not by symbol value, so that tree shape
// is a deterministic function of histogram contents and construction
// order alone.
type pqEntry struct {
	nodeIndex int
	freq      uint64
	seq       int
}

type treeHeap []pqEntry

func (h treeHeap) Len() int { return len(h) }
func (h treeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq < h[j].seq
}
func (h treeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *treeHeap) Push(x any) {
	*h = append(*h, x.(pqEntry))
}

func (h *treeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BuildTree constructs an optimal binary Huffman tree from a 256-entry
// frequency table. If every count is zero it returns an empty tree
// (no nodes, NullIndex root).
func BuildTree(hist [256]uint64) Tree {
	var t Tree
	t.Root = NullIndex

	h := make(treeHeap, 0, 256)
	seq := 0

	for sym := 0; sym < 256; sym++ {
		if hist[sym] == 0 {
			continue
		}
		t.Nodes = append(t.Nodes, Node{
			Freq:   hist[sym],
			Symbol: byte(sym),
			Left:   NullIndex,
			Right:  NullIndex,
			IsLeaf: true,
		})
		h = append(h, pqEntry{nodeIndex: len(t.Nodes) - 1, freq: hist[sym], seq: seq})
		seq++
	}

	if len(h) == 0 {
		return t
	}

	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(pqEntry)
		b := heap.Pop(&h).(pqEntry)

		t.Nodes = append(t.Nodes, Node{
			Freq:   a.freq + b.freq,
			Left:   a.nodeIndex,
			Right:  b.nodeIndex,
			IsLeaf: false,
		})
		newIndex := len(t.Nodes) - 1

		heap.Push(&h, pqEntry{nodeIndex: newIndex, freq: a.freq + b.freq, seq: seq})
		seq++
	}

	t.Root = h[0].nodeIndex
	return t
}
