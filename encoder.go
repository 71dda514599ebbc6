package huffman

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// EncodeOptions configures the parallel encoder variants.
type EncodeOptions struct {
	// Workers is the number of partitions to encode concurrently.
	// Zero or negative selects runtime.NumCPU().
	Workers int
}

func codeToUint(code []bool) uint64 {
	var v uint64
	for _, b := range code {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

func spanBits(src []byte, d Dict) uint64 {
	var bits uint64
	for _, b := range src {
		bits += uint64(len(d[b]))
	}
	return bits
}

// EncodeSpan packs src into dst MSB-first using d, single-threaded.
// dst must already be sized to hold CompressedSizeBits(histogram(src), d)
// bits (rounded up to a byte) and zeroed.
func EncodeSpan(src, dst []byte, d Dict) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(InvalidArgument, "EncodeSpan", fmt.Errorf("%v (output buffer too small?)", r))
		}
	}()

	w := NewBitWriter(dst)
	for _, b := range src {
		code := d[b]
		if len(code) == 0 {
			return newError(InvalidArgument, "EncodeSpan", fmt.Errorf("byte %d has no dictionary entry", b))
		}
		w.Write(codeToUint(code), len(code))
	}
	return nil
}

// EncodeSpanParallel partitions src into Workers chunks, encodes each
// into a private buffer, then concatenates the chunks into dst at
// their actual (non-byte-aligned) bit boundaries. Produces the same
// output as EncodeSpan for the same (src, d).
func EncodeSpanParallel(src, dst []byte, d Dict, opts EncodeOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(InvalidArgument, "EncodeSpanParallel", fmt.Errorf("%v", r))
		}
	}()

	workers := normalizeWorkers(opts.Workers, len(src))
	if workers <= 1 {
		return EncodeSpan(src, dst, d)
	}

	chunks := splitChunks(src, workers)

	type chunkResult struct {
		buf  []byte
		bits uint64
	}
	results := make([]chunkResult, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			bits := spanBits(chunk, d)
			buf := make([]byte, compressedSizeBytes(bits))
			if encErr := EncodeSpan(chunk, buf, d); encErr != nil {
				return encErr
			}
			results[i] = chunkResult{buf: buf, bits: bits}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := NewBitWriter(dst)
	for _, r := range results {
		rd := NewBitReader(r.buf, r.bits)
		remaining := r.bits
		for remaining > 0 {
			n := 32
			if uint64(n) > remaining {
				n = int(remaining)
			}
			w.Write(rd.Read(n), n)
			remaining -= uint64(n)
		}
	}
	return nil
}

// sharedBitWriter writes into a bit range of a buffer that is also
// being written by other goroutines writing adjacent ranges. The
// first and last byte of its range may be shared with a neighboring
// writer, so updates to those two bytes are serialized through mu;
// every other (interior) byte is touched by exactly one writer and
// is updated without locking. Go's sync/atomic has no byte-granularity
// atomic type, so the "atomic OR" spec.md describes for boundary
// bytes is realized here as a mutex-guarded read-modify-write, which
// gives the same indivisible-update guarantee without resorting to
// unsafe pointer tricks.
type sharedBitWriter struct {
	buf       []byte
	pos       uint64
	firstByte int
	lastByte  int
	mu        *sync.Mutex
}

func newSharedBitWriter(buf []byte, startBit, n uint64, mu *sync.Mutex) *sharedBitWriter {
	w := &sharedBitWriter{buf: buf, pos: startBit, mu: mu}
	w.firstByte = int(startBit / 8)
	if n > 0 {
		w.lastByte = int((startBit + n - 1) / 8)
	} else {
		w.lastByte = w.firstByte
	}
	return w
}

func (w *sharedBitWriter) Write(value uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := (value >> uint(i)) & 1
		if bit != 0 {
			byteIdx := int(w.pos / 8)
			shift := 7 - (w.pos % 8)
			mask := byte(1) << shift

			if byteIdx == w.firstByte || byteIdx == w.lastByte {
				w.mu.Lock()
				w.buf[byteIdx] |= mask
				w.mu.Unlock()
			} else {
				w.buf[byteIdx] |= mask
			}
		}
		w.pos++
	}
}

// EncodeSpanParallelTwoPass partitions src into Workers chunks. Pass 1
// computes each chunk's bit length (histogram x code-lengths over its
// slice) and prefix-sums them into per-chunk starting bit offsets.
// Pass 2 has every worker write directly into the shared dst at its
// offset, with the barrier between the two passes ensuring offsets
// are fully known before any writer starts. Produces the same output
// as EncodeSpan for the same (src, d).
func EncodeSpanParallelTwoPass(src, dst []byte, d Dict, opts EncodeOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(InvalidArgument, "EncodeSpanParallelTwoPass", fmt.Errorf("%v", r))
		}
	}()

	workers := normalizeWorkers(opts.Workers, len(src))
	if workers <= 1 {
		return EncodeSpan(src, dst, d)
	}

	chunks := splitChunks(src, workers)

	chunkBitsArr := make([]uint64, len(chunks))
	var g1 errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g1.Go(func() error {
			chunkBitsArr[i] = spanBits(chunk, d)
			return nil
		})
	}
	_ = g1.Wait() // spanBits never fails

	offsets := make([]uint64, len(chunks))
	var running uint64
	for i, bits := range chunkBitsArr {
		offsets[i] = running
		running += bits
	}

	var mu sync.Mutex
	var g2 errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g2.Go(func() error {
			w := newSharedBitWriter(dst, offsets[i], chunkBitsArr[i], &mu)
			for _, b := range chunk {
				code := d[b]
				if len(code) == 0 {
					return newError(InvalidArgument, "EncodeSpanParallelTwoPass", fmt.Errorf("byte %d has no dictionary entry", b))
				}
				w.Write(codeToUint(code), len(code))
			}
			return nil
		})
	}
	return g2.Wait()
}
