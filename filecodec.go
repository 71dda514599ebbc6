package huffman

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
)

// histogramCountsSize is the on-disk size of the 256 little-endian
// 64-bit counts making up the container's histogram section.
const histogramCountsSize = 256 * 8

// FileCodec glues Histogram, BuildTree, DeriveDict, CanonicalizeDict,
// the encoder and DecodeSpan into the fixed on-disk container format:
// an 8-byte little-endian payload length, a 2048-byte histogram, then
// the packed bitstream (HeaderSize = 2056 bytes before the bitstream
// starts). Logger, if set, receives one diagnostic line per EncodeFile
// or DecodeFile call, mirroring the optional io.Writer the teacher's decompressor logging
// path accepts. Cache, if set, is consulted before rebuilding the
// tree/dict/reverse-dict triple for a histogram already seen.
type FileCodec struct {
	Logger  *slog.Logger
	Cache   *DictCache
	Workers int
}

func (c *FileCodec) log(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Info(msg, args...)
	}
}

// EncodeFile reads inPath fully into memory, builds the canonical
// dictionary (via Cache if set), encodes it and writes the container
// to outPath, overwriting any existing file. It returns the size in
// bytes of the file written.
func (c *FileCodec) EncodeFile(inPath, outPath string) (int64, error) {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return 0, newError(IoFailure, "EncodeFile", fmt.Errorf("read %s: %w", inPath, err))
	}

	hist := c.histogram(src)
	entry := c.Cache.GetOrBuild(hist)

	bits := CompressedSizeBits(hist, entry.Dict)
	payload := make([]byte, compressedSizeBytes(bits))

	if err := c.encode(src, payload, entry.Dict); err != nil {
		return 0, err
	}

	c.log("encoded file",
		"input", inPath,
		"input_bytes", len(src),
		"payload_bits", bits,
		"fingerprint", fingerprintHistogram(hist))

	out := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint64(out[0:8], uint64(len(src)))
	writeHistogram(out[8:8+histogramCountsSize], hist)
	copy(out[HeaderSize:], payload)

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return 0, newError(IoFailure, "EncodeFile", fmt.Errorf("write %s: %w", outPath, err))
	}

	return int64(len(out)), nil
}

// DecodeFile reverses EncodeFile: it reads the container's header,
// rebuilds the canonical dictionary from the stored histogram (never
// from a stored codebook, per the container format), decodes the
// bitstream and writes exactly the original payload length of bytes
// to outPath, overwriting any existing file.
func (c *FileCodec) DecodeFile(inPath, outPath string) error {
	in, err := os.ReadFile(inPath)
	if err != nil {
		return newError(IoFailure, "DecodeFile", fmt.Errorf("read %s: %w", inPath, err))
	}
	if len(in) < HeaderSize {
		return newError(FormatError, "DecodeFile", fmt.Errorf("file %s is %d bytes, shorter than header size %d", inPath, len(in), HeaderSize))
	}

	payloadLen := binary.LittleEndian.Uint64(in[0:8])
	hist := readHistogram(in[8 : 8+histogramCountsSize])
	bitstream := in[HeaderSize:]

	entry := c.Cache.GetOrBuild(hist)
	bits := CompressedSizeBits(hist, entry.Dict)
	if compressedSizeBytes(bits) > uint64(len(bitstream)) {
		return newError(FormatError, "DecodeFile", fmt.Errorf("%s: declared bitstream needs %d bytes, file has %d", inPath, compressedSizeBytes(bits), len(bitstream)))
	}

	dst := make([]byte, payloadLen)
	if err := DecodeSpan(bitstream, bits, dst, entry.Dict, entry.Reverse); err != nil {
		return err
	}

	c.log("decoded file",
		"input", inPath,
		"output_bytes", len(dst),
		"fingerprint", fingerprintHistogram(hist))

	if err := os.WriteFile(outPath, dst, 0o644); err != nil {
		return newError(IoFailure, "DecodeFile", fmt.Errorf("write %s: %w", outPath, err))
	}
	return nil
}

func (c *FileCodec) histogram(src []byte) [256]uint64 {
	if c.Workers != 1 {
		return HistogramParallel64(src, c.Workers)
	}
	return Histogram(src)
}

func (c *FileCodec) encode(src, dst []byte, d Dict) error {
	if c.Workers != 1 {
		return EncodeSpanParallelTwoPass(src, dst, d, EncodeOptions{Workers: c.Workers})
	}
	return EncodeSpan(src, dst, d)
}

func writeHistogram(dst []byte, hist [256]uint64) {
	for i, count := range hist {
		binary.LittleEndian.PutUint64(dst[i*8:], count)
	}
}

func readHistogram(src []byte) [256]uint64 {
	var hist [256]uint64
	for i := range hist {
		hist[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
	return hist
}
