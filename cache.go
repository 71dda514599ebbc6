package huffman

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DictCacheEntry bundles the three derived structures FileCodec needs
// for a given histogram, so a cache hit skips BuildTree, DeriveDict,
// CanonicalizeDict and BuildReverseDict all at once.
type DictCacheEntry struct {
	Tree    Tree
	Dict    Dict
	Reverse ReverseDict
}

// DictCache is an in-process, non-wire-format LRU memoizing
// DictCacheEntry by a histogram's xxhash fingerprint. It never
// affects the container format FileCodec produces: a miss always
// falls back to full recomputation, so output is identical whether
// or not the cache is warm.
type DictCache struct {
	entries *lru.Cache[uint64, DictCacheEntry]
}

// NewDictCache returns a DictCache holding up to capacity entries.
// capacity <= 0 is treated as 1, since golang-lru rejects a
// non-positive size.
func NewDictCache(capacity int) *DictCache {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New[uint64, DictCacheEntry](capacity)
	if err != nil {
		// Only returns an error for a non-positive size, excluded above.
		panic(err)
	}
	return &DictCache{entries: c}
}

// fingerprintHistogram hashes hist's 256 counts with xxhash, giving a
// cheap, collision-resistant-enough cache key and log field without
// hashing the (potentially much larger) original payload.
func fingerprintHistogram(hist [256]uint64) uint64 {
	var buf [256 * 8]byte
	for i, c := range hist {
		binary.LittleEndian.PutUint64(buf[i*8:], c)
	}
	return xxhash.Sum64(buf[:])
}

// GetOrBuild returns the DictCacheEntry for hist, building and caching
// it on a miss. A nil DictCache is valid and always builds fresh,
// so callers (like FileCodec) can treat an unset cache as a no-op.
func (c *DictCache) GetOrBuild(hist [256]uint64) DictCacheEntry {
	if c == nil {
		return buildDictCacheEntry(hist)
	}

	key := fingerprintHistogram(hist)
	if entry, ok := c.entries.Get(key); ok {
		return entry
	}

	entry := buildDictCacheEntry(hist)
	c.entries.Add(key, entry)
	return entry
}

func buildDictCacheEntry(hist [256]uint64) DictCacheEntry {
	tr := BuildTree(hist)
	d := CanonicalizeDict(DeriveDict(tr))
	return DictCacheEntry{
		Tree:    tr,
		Dict:    d,
		Reverse: BuildReverseDict(d, MaxCodeLen),
	}
}
