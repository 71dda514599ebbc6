package huffman

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Histogram counts symbol occurrences in src with a single scalar
// pass. An empty (or nil) src yields an all-zero table, never a
// partially-populated or short one.
func Histogram(src []byte) [256]uint64 {
	var counts [256]uint64
	for _, b := range src {
		counts[b]++
	}
	return counts
}

// HistogramParallel32 partitions src across workers contiguous
// chunks, each with a private 256-entry 32-bit counter table, summed
// into the final 64-bit result. Per spec, a per-chunk count
// overflowing 2^32 is undefined behavior; callers with chunks that
// large should use HistogramParallel64 instead.
func HistogramParallel32(src []byte, workers int) [256]uint64 {
	partials := histogramPartials(src, workers, func(chunk []byte) [256]uint64 {
		var counts [256]uint32
		for _, b := range chunk {
			counts[b]++
		}
		var out [256]uint64
		for i, c := range counts {
			out[i] = uint64(c)
		}
		return out
	})
	return sumHistograms(partials)
}

// HistogramParallel64 is identical to HistogramParallel32 but uses
// 64-bit per-worker counters, safe for chunks of any size.
func HistogramParallel64(src []byte, workers int) [256]uint64 {
	partials := histogramPartials(src, workers, func(chunk []byte) [256]uint64 {
		var counts [256]uint64
		for _, b := range chunk {
			counts[b]++
		}
		return counts
	})
	return sumHistograms(partials)
}

// fastTables is the number of independent private tables each
// HistogramFast worker keeps, selected by the low bits of the
// in-chunk position to reduce store-to-load dependency chains
// between consecutive increments of the same bucket.
const fastTables = 4

// HistogramFast behaves like HistogramParallel64, but each worker
// keeps fastTables independent 256-entry tables indexed by the low
// bits of the byte's position within the chunk, reducing the
// store-to-load dependency a single shared table creates when
// consecutive bytes repeat the same value.
func HistogramFast(src []byte, workers int) [256]uint64 {
	partials := histogramPartials(src, workers, func(chunk []byte) [256]uint64 {
		var tables [fastTables][256]uint64
		for i, b := range chunk {
			tables[i%fastTables][b]++
		}
		var out [256]uint64
		for t := 0; t < fastTables; t++ {
			for i := 0; i < 256; i++ {
				out[i] += tables[t][i]
			}
		}
		return out
	})
	return sumHistograms(partials)
}

// histogramPartials deterministically splits src into workers
// contiguous, near-equal chunks (chunking is documented but not part
// of the external contract) and runs count over each chunk in
// parallel via an errgroup worker pool, returning one partial table
// per chunk in input order.
func histogramPartials(src []byte, workers int, count func(chunk []byte) [256]uint64) [][256]uint64 {
	workers = normalizeWorkers(workers, len(src))
	if workers <= 1 {
		return [][256]uint64{count(src)}
	}

	chunks := splitChunks(src, workers)
	partials := make([][256]uint64, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			partials[i] = count(chunk)
			return nil
		})
	}
	_ = g.Wait() // count never returns an error

	return partials
}

func sumHistograms(partials [][256]uint64) [256]uint64 {
	var total [256]uint64
	for _, p := range partials {
		for i := 0; i < 256; i++ {
			total[i] += p[i]
		}
	}
	return total
}

// normalizeWorkers clamps the requested worker count to something
// sane for the given input size: at least 1, never more workers than
// there are bytes to scan, defaulting to hardware concurrency when
// workers <= 0.
func normalizeWorkers(workers, n int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// splitChunks divides src into exactly len(chunks) <= workers
// contiguous, near-equal-size slices covering all of src.
func splitChunks(src []byte, workers int) [][]byte {
	if workers < 1 {
		workers = 1
	}
	n := len(src)
	base := n / workers
	rem := n % workers

	chunks := make([][]byte, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, src[start:start+size])
		start += size
	}
	return chunks
}
